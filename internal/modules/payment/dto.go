package payment

import "github.com/shopspring/decimal"

type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required" example:"2500.00"`
}

type CancelBookingResponse struct {
	BookingID int64 `json:"booking_id"`
	Deleted   bool  `json:"deleted"`
}
