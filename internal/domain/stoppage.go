package domain

import "time"

// LostTimeReason is a catalog reason for a machine stoppage.
type LostTimeReason struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	IsPlanned   bool   `json:"is_planned"`
	IsActive    bool   `json:"is_active"`
	Order       int    `json:"order,omitempty"`
	Color       string `json:"color,omitempty"`
}

// LostTimeEntry is one declared stoppage. Entries created in the console carry a
// temporary "temp_" id until the server assigns one.
type LostTimeEntry struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason"`
	Comment   string    `json:"comment"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
}
