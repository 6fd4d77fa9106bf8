package models

// Identity is the caller of a request: an authenticated user or anonymous (zero value).
type Identity struct {
	ID    uint
	Name  string
	Email string
}

// Anonymous is the identity of a caller without a valid session.
var Anonymous = Identity{}

// Authenticated reports whether the identity belongs to a logged in user.
func (i Identity) Authenticated() bool {
	return i.ID != 0
}
