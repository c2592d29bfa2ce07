package request

type GenerateProposalsRequest struct {
	ClubID string `json:"club_id" validate:"required,uuid4"`
	From   string `json:"from" validate:"required,datetime=2006-01-02"`
	To     string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}
