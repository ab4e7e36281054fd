package domain

// Identity is the caller a cart belongs to. An authenticated caller has a
// UserID; an anonymous caller only has a SessionID.
type Identity struct {
	UserID    string
	SessionID string
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

func (i Identity) Anonymous() bool {
	return i.UserID == "" && i.SessionID != ""
}

func (i Identity) Valid() bool {
	return i.UserID != "" || i.SessionID != ""
}

// Kind is used as a low-cardinality log and metric label.
func (i Identity) Kind() string {
	switch {
	case i.Authenticated():
		return "user"
	case i.Anonymous():
		return "session"
	default:
		return "none"
	}
}
