package database

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\$\d+`)

// ConvertPlaceholders converts PostgreSQL placeholders ($1, $2) to MySQL
// placeholders (?). Queries are written in PostgreSQL format and converted
// for MySQL; SQLite accepts the $N form natively.
func ConvertPlaceholders(query string) string {
	if !IsMySQL() {
		return query
	}

	placeholders := placeholderRe.FindAllString(query, -1)
	result := query
	for _, placeholder := range placeholders {
		result = strings.Replace(result, placeholder, "?", 1)
	}
	return result
}
