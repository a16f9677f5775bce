package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID         uint      `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name" db:"name"`
	Password   string    `json:"-" db:"pw"` // Never expose in JSON
	Role       string    `json:"role" db:"role"`
	CreateTime time.Time `json:"created_at" db:"create_time"`
}

type UserRole string

const (
	RoleAgent UserRole = "agent"
	RoleAdmin UserRole = "admin"
)

// roleLevels orders roles so that admin satisfies any agent requirement.
var roleLevels = map[UserRole]int{
	RoleAgent: 1,
	RoleAdmin: 2,
}

// IsValid reports whether the role is one of the two defined values.
func (r UserRole) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Satisfies reports whether a user holding this role meets the required role.
func (r UserRole) Satisfies(required UserRole) bool {
	have, ok := roleLevels[r]
	if !ok {
		return false
	}
	want, ok := roleLevels[required]
	if !ok {
		return false
	}
	return have >= want
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func (u *User) IsAdmin() bool {
	return UserRole(u.Role) == RoleAdmin
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}
