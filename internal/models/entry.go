package models

import "time"

// Entry is a single income or expense record owned by a user.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Type      string    `json:"type"` // "income" or "expense"
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Note      string    `json:"note,omitempty"`
	Datetime  time.Time `json:"datetime"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryTypes are the only accepted values for Entry.Type.
var EntryTypes = []string{"income", "expense"}

// ValidType reports whether t is an accepted entry type.
func ValidType(t string) bool {
	return t == "income" || t == "expense"
}
