package catalog

import (
	"time"

	"hotelcore/internal/domain"

	"github.com/shopspring/decimal"
)

type CategoryRequest struct {
	Name              string          `json:"name" binding:"required"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	PrepaymentPercent decimal.Decimal `json:"prepayment_percent"`
	RefundPercent     decimal.Decimal `json:"refund_percent"`
	RoomsCount        int             `json:"rooms"`
	Floors            int             `json:"floors"`
	Beds              int             `json:"beds"`
	Square            float64         `json:"square"`
	IsHidden          bool            `json:"is_hidden"`
}

func (r CategoryRequest) apply(c *domain.Category) {
	c.Name = r.Name
	c.Description = r.Description
	c.Price = r.Price
	c.PrepaymentPercent = r.PrepaymentPercent
	c.RefundPercent = r.RefundPercent
	c.RoomsCount = r.RoomsCount
	c.Floors = r.Floors
	c.Beds = r.Beds
	c.Square = r.Square
	c.IsHidden = r.IsHidden
}

type RoomRequest struct {
	// RoomNumber 0 assigns the next free number.
	RoomNumber int   `json:"room_number"`
	CategoryID int64 `json:"category_id"`
}

type DiscountRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Percent     decimal.Decimal `json:"discount"`
	StartDate   string          `json:"start_date" binding:"required"`
	EndDate     string          `json:"end_date" binding:"required"`
}

type TagRequest struct {
	Name string `json:"name" binding:"required"`
}

type PhotoPositionRequest struct {
	Position int `json:"order" binding:"required,gte=1"`
}

// SearchParams filters the public category listing.
type SearchParams struct {
	Name          string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinBeds       int
	FreeFrom      *time.Time
	FreeTo        *time.Time
	SortBy        string
	Desc          bool
	Page          int
	PerPage       int
	IncludeHidden bool
}

type SearchResult struct {
	Categories []domain.Category `json:"categories"`
	Page       int               `json:"page"`
	PerPage    int               `json:"page_size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
}
