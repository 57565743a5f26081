package domain

import "time"

type Room struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	RoomNumber int        `json:"room_number" gorm:"not null;index" validate:"gte=0"`
	CategoryID int64      `json:"category_id" gorm:"not null;index" validate:"required"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"-" gorm:"index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (r *Room) IsDeleted() bool { return r.DeletedAt != nil }

// ValidateRoom checks the fields of a room. A zero RoomNumber means
// "assign the next free number" and is accepted here.
func ValidateRoom(r *Room) error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.RoomNumber < 0 {
		return InvalidField("room_number", "must be positive")
	}
	return nil
}
