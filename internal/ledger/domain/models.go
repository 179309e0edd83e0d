package domain

// Subject identifies the actor being metered: an authenticated user id, or
// the caller's IP address for guests. Exactly one of the fields is set.
type Subject struct {
	UserID string
	IP     string
}

// Key returns the stable counter key for the subject. Guest counters never
// collide with user counters, and a guest who later signs in starts a fresh
// counter under the user key.
func (s Subject) Key() string {
	if s.UserID != "" {
		return "user:" + s.UserID
	}
	return "ip:" + s.IP
}

func (s Subject) IsUser() bool { return s.UserID != "" }

// Decision is the outcome of a reservation attempt. A denial is an expected
// business outcome, not an error.
type Decision struct {
	Allowed   bool `json:"allowed"`
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`

	// Unlimited is set for premium subjects, which are never counted.
	Unlimited bool `json:"unlimited,omitempty"`
}
