package seed

import (
	"database/sql"
	"fmt"

	"github.com/tagblaze/tagblaze/internal/auth"
	"github.com/tagblaze/tagblaze/internal/database"
	"github.com/tagblaze/tagblaze/internal/models"
	"github.com/tagblaze/tagblaze/internal/repository"
)

// Summary reports what a reset left behind.
type Summary struct {
	Reset           bool `json:"reset"`
	UsersSeeded     int  `json:"users_seeded"`
	TagsSeeded      int  `json:"tags_seeded"`
	TicketsSeeded   int  `json:"tickets_seeded"`
	RelationsSeeded int  `json:"relations_seeded"`
}

// Service wipes and repopulates the store with development fixtures. It is a
// development convenience, wired only from the dev reset endpoint and CLI.
type Service struct {
	db      *sql.DB
	users   *repository.UserRepository
	tickets *repository.TicketRepository
	tags    *repository.TagRepository
	links   *repository.TicketTagRepository
	hasher  *auth.PasswordHasher
}

func NewService(db *sql.DB, users *repository.UserRepository, tickets *repository.TicketRepository,
	tags *repository.TagRepository, links *repository.TicketTagRepository, hasher *auth.PasswordHasher) *Service {
	return &Service{db: db, users: users, tickets: tickets, tags: tags, links: links, hasher: hasher}
}

// Reset truncates the four tables and seeds demo users, tags, tickets, and
// relations.
func (s *Service) Reset() (*Summary, error) {
	if err := s.truncate(); err != nil {
		return nil, fmt.Errorf("db reset failed: %w", err)
	}

	users, err := s.seedUsers()
	if err != nil {
		return nil, fmt.Errorf("users seeding error: %w", err)
	}

	tags, tickets, relations, err := s.seedTagsAndTickets(users)
	if err != nil {
		return nil, fmt.Errorf("tags & tickets seeding error: %w", err)
	}

	return &Summary{
		Reset:           true,
		UsersSeeded:     len(users),
		TagsSeeded:      tags,
		TicketsSeeded:   tickets,
		RelationsSeeded: relations,
	}, nil
}

func (s *Service) truncate() error {
	if database.IsPostgreSQL() {
		_, err := s.db.Exec(`TRUNCATE users, tags, tickets, ticket_tags RESTART IDENTITY CASCADE`)
		return err
	}

	// Child rows first so foreign keys stay satisfied throughout.
	for _, table := range []string{"ticket_tags", "tickets", "tags", "users"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}
	if database.IsSQLite() {
		// Restart the AUTOINCREMENT counters so seeded ids start at 1 again.
		if _, err := s.db.Exec(`DELETE FROM sqlite_sequence WHERE name IN ('users', 'tags', 'tickets')`); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) seedUsers() ([]*models.User, error) {
	hash, err := s.hasher.HashPassword("devpass123")
	if err != nil {
		return nil, err
	}

	fixtures := []*models.User{
		{Email: "zoya@tagblaze.dev", Name: "Zoya", Role: string(models.RoleAgent)},
		{Email: "ankit@tagblaze.dev", Name: "Ankit", Role: string(models.RoleAdmin)},
		{Email: "divya@tagblaze.dev", Name: "Divya Singh", Role: string(models.RoleAgent)},
	}
	for _, u := range fixtures {
		u.Password = hash
		if err := s.users.Create(u); err != nil {
			return nil, err
		}
	}
	return fixtures, nil
}

func (s *Service) seedTagsAndTickets(users []*models.User) (int, int, int, error) {
	tags := []*models.Tag{
		{Name: "Bug"},
		{Name: "Feature"},
		{Name: "Urgent"},
	}
	for _, t := range tags {
		if err := s.tags.Create(t); err != nil {
			return 0, 0, 0, err
		}
	}

	tickets := []*models.Ticket{
		{
			Title:       "Fix navbar overflow bug",
			Description: "Navbar overlaps on mobile screens",
			UserID:      &users[0].ID,
		},
		{
			Title:       "Add dark mode toggle",
			Description: "Users should be able to switch themes",
			UserID:      &users[1].ID,
		},
	}
	for _, t := range tickets {
		if err := s.tickets.Create(t); err != nil {
			return 0, 0, 0, err
		}
	}

	relations := []models.TicketTag{
		{TicketID: tickets[0].ID, TagID: tags[0].ID},
		{TicketID: tickets[0].ID, TagID: tags[2].ID},
		{TicketID: tickets[1].ID, TagID: tags[1].ID},
	}
	for _, rel := range relations {
		if err := s.links.Assign(rel.TicketID, rel.TagID); err != nil {
			return 0, 0, 0, err
		}
	}

	return len(tags), len(tickets), len(relations), nil
}
