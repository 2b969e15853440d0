package models

import "time"

// Participant represents a Telegram user taking part in the hunt
type Participant struct {
	UserID    int64      `json:"user_id" db:"user_id"` // Telegram User ID
	Name      string     `json:"name" db:"name"`
	StudentID int        `json:"student_id" db:"student_id"` // 0 until registration completes
	LastHint  *time.Time `json:"last_hint,omitempty" db:"-"`
}

// Registered reports whether the participant finished the registration flow.
func (p *Participant) Registered() bool {
	return p != nil && p.StudentID != 0
}
