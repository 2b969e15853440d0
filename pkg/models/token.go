package models

// Token represents a hidden physical token that can be claimed once
type Token struct {
	Code       string `json:"code" db:"code"`
	Category   string `json:"category" db:"category"` // colour group, e.g. "red"
	Claimed    bool   `json:"claimed" db:"claimed"`
	Claimant   string `json:"claimant" db:"claimant"`
	Hash       string `json:"hash" db:"hash"`
	FirstHint  string `json:"first_hint" db:"first_hint"`
	SecondHint string `json:"second_hint" db:"second_hint"`
	ThirdHint  string `json:"third_hint" db:"third_hint"`
}

// Hints returns the non-empty hints of the token in order.
func (t Token) Hints() []string {
	hints := make([]string, 0, 3)
	for _, h := range []string{t.FirstHint, t.SecondHint, t.ThirdHint} {
		if h != "" {
			hints = append(hints, h)
		}
	}
	return hints
}
