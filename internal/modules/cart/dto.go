package cart

type AddBookingRequest struct {
	CategoryID int64  `json:"category_id" binding:"required,gt=0"`
	Start      string `json:"start" binding:"required"`
	End        string `json:"end" binding:"required"`
}

// ConfirmRequest is the public checkout body. Checkout records the
// prepayment only; full payment is recorded by a worker.
type ConfirmRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Comment string `json:"comment" binding:"max=2000"`
}

type WorkerConfirmRequest struct {
	Email       string `json:"email" binding:"required,email"`
	IsFullyPaid bool   `json:"is_fully_paid"`
	Comment     string `json:"comment" binding:"max=2000"`
}
