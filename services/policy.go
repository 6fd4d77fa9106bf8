package services

import "github.com/cppla/blog/models"

// Authorizer decides whether an identity may perform admin-only actions.
type Authorizer interface {
	IsAdmin(id models.Identity) bool
	RequireAdmin(id models.Identity) error
}

// Policy grants admin rights to the first AdminMaxUserID registered accounts.
// It is a pure function of the identity resolved for the current request.
type Policy struct {
	AdminMaxUserID uint
}

var _ Authorizer = Policy{}

// IsAdmin reports whether id is authenticated and within the privileged id range.
func (p Policy) IsAdmin(id models.Identity) bool {
	return id.Authenticated() && id.ID <= p.AdminMaxUserID
}

// RequireAdmin returns ErrForbidden unless id is an admin.
func (p Policy) RequireAdmin(id models.Identity) error {
	if !p.IsAdmin(id) {
		return ErrForbidden
	}
	return nil
}
