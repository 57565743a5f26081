package domain

import "time"

type Tag struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex" validate:"required,max=100"`
	CreatedAt time.Time `json:"created_at"`
}

// Photo belongs to a category. Position is 1-based and dense per category.
type Photo struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	CategoryID int64     `json:"category_id" gorm:"not null;index"`
	Path       string    `json:"path" gorm:"size:512;not null"`
	Position   int       `json:"order" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}
