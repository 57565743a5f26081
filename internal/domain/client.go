package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Client struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	Email        string          `json:"email" gorm:"size:255;not null;index" validate:"required,max=255"`
	FirstName    string          `json:"first_name,omitempty" gorm:"size:255"`
	LastName     string          `json:"last_name,omitempty" gorm:"size:255"`
	PasswordHash string          `json:"-" gorm:"size:255"`
	IsConfirmed  bool            `json:"is_confirmed" gorm:"not null;default:false"`
	DateOfBirth  *datatypes.Date `json:"date_of_birth,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	DeletedAt    *time.Time      `json:"-" gorm:"index"`
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateClient(c *Client) error {
	c.Email = NormalizeEmail(c.Email)
	if err := validateStruct(c); err != nil {
		return err
	}
	if !strings.Contains(c.Email, "@") {
		return InvalidField("email", "must contain @")
	}
	return nil
}
