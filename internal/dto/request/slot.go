package request

type ListSlotsRequest struct {
	ClubID string `json:"club_id" validate:"required,uuid4"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
}
