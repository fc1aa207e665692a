package domain

import "time"

// Lead statuses a sales contact can move through.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusReplied   = "replied"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

// ValidLeadStatuses lists every accepted lead status.
var ValidLeadStatuses = []string{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusReplied,
	LeadStatusWon,
	LeadStatusLost,
}

// Lead is a sales lead owned by a single user.
type Lead struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	StudioName   string    `json:"studio_name"`
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	SteamAppID   *int      `json:"steam_app_id,omitempty"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LeadRequest is the write payload for creating or updating a lead.
type LeadRequest struct {
	StudioName   string `json:"studio_name"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	SteamAppID   *int   `json:"steam_app_id,omitempty"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

// IsValidLeadStatus reports whether s is one of the accepted statuses.
func IsValidLeadStatus(s string) bool {
	for _, v := range ValidLeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}
