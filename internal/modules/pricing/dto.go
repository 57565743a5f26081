package pricing

type RescheduleRequest struct {
	Start      string `json:"start" binding:"required"`
	End        string `json:"end" binding:"required"`
	CategoryID *int64 `json:"category_id"`
}
