package response

// GenerateReport summarizes one proposal-generation run.
type GenerateReport struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// RaceReport aggregates the post-confirmation sweeps. Failures carry the
// cancellations that could not be completed; they are logged, never fatal.
type RaceReport struct {
	SameDayCancellations    int      `json:"same_day_cancellations"`
	CompetitorCancellations int      `json:"competitor_cancellations"`
	CompetitorSlotsReset    int      `json:"competitor_slots_reset"`
	Failures                []string `json:"failures,omitempty"`
}
