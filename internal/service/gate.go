package service

import "github.com/iliyamo/resort-booking/internal/model"

// Principal is the identity resolved from the caller's access token.  The
// zero value represents an anonymous caller.
type Principal struct {
	UserID uint64
	Role   string
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool { return p.UserID != 0 }

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Authenticated() && p.Role == model.RoleAdmin }

// RequireUser fails with ErrUnauthorized for anonymous callers.
func RequireUser(p Principal) error {
	if !p.Authenticated() {
		return ErrUnauthorized
	}
	return nil
}

// RequireAdmin is the precondition of every catalog mutation and booking
// decision.  It runs before any read or write, so a rejected call leaves
// storage untouched.
func RequireAdmin(p Principal) error {
	if err := RequireUser(p); err != nil {
		return err
	}
	if p.Role != model.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
