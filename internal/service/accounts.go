package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/resort-booking/internal/model"
)

// AccountStore is the part of the user repository used to seed accounts.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error)
}

// AdminSeed describes the bootstrap admin account.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
	Cost     int
}

// EnsureAdmin creates the bootstrap admin when the email is not taken yet.
// Registration only ever creates plain users, so this is the one way an
// admin account comes into existence.  An empty email or password disables
// seeding.
func EnsureAdmin(ctx context.Context, users AccountStore, seed AdminSeed) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" || seed.Password == "" {
		return false, nil
	}
	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role != model.RoleAdmin {
			logrus.WithField("email", email).Warn("admin seed: email belongs to a non-admin account")
		}
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, err
	}
	if _, err := users.Create(ctx, seed.Name, email, seed.Password, model.RoleAdmin, seed.Cost); err != nil {
		return false, err
	}
	return true, nil
}
