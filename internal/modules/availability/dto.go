package availability

type BusyDatesResponse struct {
	CategoryID int64    `json:"category_id"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Dates      []string `json:"dates"`
}
