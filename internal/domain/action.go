package domain

import "strings"

// ActionState is the enabled state of a view action. A disabled action carries
// the human-readable reasons shown as its tooltip.
type ActionState struct {
	Enabled bool     `json:"enabled"`
	Label   string   `json:"label,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
}

// Reason joins the reasons the way the tooltip shows them.
func (a ActionState) Reason() string {
	return strings.Join(a.Reasons, " | ")
}
