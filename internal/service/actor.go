package service

import (
	"context"
	"errors"

	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
)

// Actor is the authenticated caller with its active tenant resolved.
// CompanyID is empty for admins and for users without a membership.
type Actor struct {
	UserID    string
	Email     string
	Role      model.Role
	CompanyID string
}

// HasCompany reports whether the actor can reach company-scoped data.
func (a *Actor) HasCompany() bool { return a != nil && a.CompanyID != "" }

// Is reports whether the actor holds one of roles.
func (a *Actor) Is(roles ...model.Role) bool {
	if a == nil {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// requireEmployer fails Unauthorized unless a is an EMPLOYER with a tenant.
func requireEmployer(a *Actor) error {
	if !a.Is(model.RoleEmployer) || !a.HasCompany() {
		return unauthorized()
	}
	return nil
}

// ActorResolver loads the user behind a token and its first membership.
type ActorResolver struct {
	Users     *repository.UserRepo
	Companies *repository.CompanyRepo
}

func NewActorResolver(users *repository.UserRepo, companies *repository.CompanyRepo) *ActorResolver {
	return &ActorResolver{Users: users, Companies: companies}
}

// Resolve returns Unauthorized for unknown or inactive users.  A missing
// membership is not an error here; company-scoped operations check
// HasCompany themselves.
func (r *ActorResolver) Resolve(ctx context.Context, userID string) (*Actor, error) {
	u, err := r.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, unauthorized()
		}
		return nil, internal("load user", err)
	}
	if !u.IsActive {
		return nil, unauthorized()
	}
	a := &Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
	if u.Role == model.RoleAdmin {
		return a, nil
	}
	m, err := r.Companies.FirstMembership(ctx, u.ID)
	switch {
	case err == nil:
		a.CompanyID = m.CompanyID
	case errors.Is(err, repository.ErrNoMembership):
	default:
		return nil, internal("load membership", err)
	}
	return a, nil
}
