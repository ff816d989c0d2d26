package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mrjaketay/timeApp-sub001/internal/database"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
)

// RegisterInput is the POST /register body after binding.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	CompanyName string
	Role        string
}

// Registration is what Register created.
type Registration struct {
	User    *model.User
	Company *model.Company // nil when the account was not linked to a company
}

const minPasswordLen = 8

// IdentityService creates accounts and their tenants.
type IdentityService struct {
	db         *sql.DB
	Users      *repository.UserRepo
	Companies  *repository.CompanyRepo
	Employees  *repository.EmployeeRepo
	BcryptCost int
}

func NewIdentityService(db *sql.DB, users *repository.UserRepo, companies *repository.CompanyRepo, employees *repository.EmployeeRepo, bcryptCost int) *IdentityService {
	return &IdentityService{db: db, Users: users, Companies: companies, Employees: employees, BcryptCost: bcryptCost}
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.CompanyName = strings.TrimSpace(in.CompanyName)
}

// validate reports the first failing field.
func (in RegisterInput) validate() (model.Role, error) {
	if in.Name == "" {
		return "", validationf("name is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return "", validationf("a valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return "", validationf("password must be at least %d characters", minPasswordLen)
	}
	role, err := model.ParseRole(in.Role)
	if err != nil || role == model.RoleAdmin {
		return "", validationf("role must be EMPLOYER or EMPLOYEE")
	}
	if role == model.RoleEmployer && in.CompanyName == "" {
		return "", validationf("companyName is required")
	}
	return role, nil
}

// Register creates the user.  An EMPLOYER also gets a company and a
// membership; an EMPLOYEE whose email matches an active employee profile
// is linked to that profile's company.  All writes share one transaction.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*Registration, error) {
	in.normalize()
	role, err := in.validate()
	if err != nil {
		return nil, err
	}

	out := &Registration{}
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		u := &model.User{Name: in.Name, Email: in.Email, Role: role}
		if err := s.Users.CreateTx(ctx, tx, u, in.Password, s.BcryptCost); err != nil {
			return err
		}
		out.User = u

		var companyID string
		switch role {
		case model.RoleEmployer:
			c := &model.Company{Name: in.CompanyName}
			if err := s.Companies.CreateTx(ctx, tx, c); err != nil {
				return err
			}
			out.Company = c
			companyID = c.ID
		case model.RoleEmployee:
			p, err := s.Employees.FindActiveByEmailAnyTx(ctx, tx, in.Email)
			if errors.Is(err, repository.ErrEmployeeNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			c, err := s.Companies.GetByIDTx(ctx, tx, p.CompanyID)
			if err != nil {
				return err
			}
			out.Company = c
			companyID = c.ID
		}
		return s.Companies.AddMemberTx(ctx, tx, &model.CompanyMembership{UserID: u.ID, CompanyID: companyID, Role: role})
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, conflict(MsgEmailRegistered)
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, conflict(MsgCompanyNameTaken)
		}
		return nil, internal("register", err)
	}
	return out, nil
}
