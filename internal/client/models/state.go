package models

// State is the session snapshot observed by the rest of the client and
// persisted between runs. Credentials never appear here.
type State struct {
	IsLoggedIn     bool         `json:"isLoggedIn"`
	User           *SessionUser `json:"user"`
	IsInitializing bool         `json:"isInitializing"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.User = s.User.Clone()
	return s
}

// Phase names the lifecycle stage derived from the state.
func (s State) Phase() string {
	switch {
	case s.IsInitializing:
		return "initializing"
	case s.User == nil:
		return "uninitialized"
	case s.IsLoggedIn:
		return "authenticated"
	default:
		return "guest"
	}
}
