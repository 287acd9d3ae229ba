package model

// UnlimitedCredits is the trial_count sentinel for plans without metering.
const UnlimitedCredits = -1

type Plan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TrialCount int    `json:"trial_count"`
	PriceCents int    `json:"price_cents"`
}

func (p *Plan) Metered() bool {
	return p.TrialCount != UnlimitedCredits
}
