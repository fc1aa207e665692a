package domain

// UserProfile is the authenticated caller extracted from a verified Clerk
// session token.
type UserProfile struct {
	Sub       string `json:"sub"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}
