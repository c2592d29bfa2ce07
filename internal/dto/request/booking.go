package request

type JoinActivityRequest struct {
	SlotID string `json:"slot_id" validate:"required,uuid4"`
	UserID string `json:"user_id" validate:"required,uuid4"`
	Method string `json:"method" validate:"required,oneof=credits points"`
}
