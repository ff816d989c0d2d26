package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mrjaketay/timeApp-sub001/internal/audit"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
)

// EmployeeInput creates a profile directly, without an invitation.
type EmployeeInput struct {
	Name                string
	Email               string
	EmployeeID          string
	Phone               string
	Address             string
	SalaryRate          *float64
	EmploymentStartDate string // YYYY-MM-DD, optional
}

// EmployeeService manages employee profiles of the actor's company.
type EmployeeService struct {
	Employees *repository.EmployeeRepo
}

func NewEmployeeService(emp *repository.EmployeeRepo) *EmployeeService {
	return &EmployeeService{Employees: emp}
}

func (s *EmployeeService) Create(ctx context.Context, actor *Actor, in EmployeeInput) (*model.EmployeeProfile, error) {
	if err := requireEmployer(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return nil, validationf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationf("a valid email is required")
	}
	if in.SalaryRate != nil && *in.SalaryRate < 0 {
		return nil, validationf("salaryRate must not be negative")
	}
	p := &model.EmployeeProfile{
		CompanyID:  actor.CompanyID,
		Name:       name,
		Email:      email,
		EmployeeID: optional(in.EmployeeID),
		Phone:      optional(in.Phone),
		Address:    optional(in.Address),
		SalaryRate: in.SalaryRate,
		IsActive:   true,
	}
	if d := strings.TrimSpace(in.EmploymentStartDate); d != "" {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return nil, validationf("employmentStartDate must be YYYY-MM-DD")
		}
		p.EmploymentStartDate = &t
	}

	exists, err := s.Employees.ExistsInCompany(ctx, actor.CompanyID, email, p.EmployeeID)
	if err != nil {
		return nil, internal("check employee", err)
	}
	if exists {
		return nil, conflict(MsgEmployeeExists)
	}
	if p.EmployeeID != nil {
		owner, err := s.Employees.EmployeeIDOwner(ctx, *p.EmployeeID)
		if err != nil {
			return nil, internal("check employee id", err)
		}
		if owner != "" {
			return nil, conflict(MsgEmployeeIDTaken)
		}
	}
	if err := s.Employees.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, conflict(MsgEmployeeExists)
		}
		return nil, internal("create employee", err)
	}
	_ = audit.LogEvent(ctx, "employee.created", map[string]any{"employee_profile_id": p.ID, "company_id": p.CompanyID})
	return p, nil
}

// List returns the company's profiles; active filters when non-nil.
func (s *EmployeeService) List(ctx context.Context, actor *Actor, active *bool) ([]model.EmployeeProfile, error) {
	if err := requireEmployer(actor); err != nil {
		return nil, err
	}
	out, err := s.Employees.List(ctx, actor.CompanyID, active)
	if err != nil {
		return nil, internal("list employees", err)
	}
	return out, nil
}

func (s *EmployeeService) Deactivate(ctx context.Context, actor *Actor, id string) error {
	if err := requireEmployer(actor); err != nil {
		return err
	}
	if err := s.Employees.Deactivate(ctx, actor.CompanyID, id); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return notFound(MsgEmployeeNotFound)
		}
		return internal("deactivate employee", err)
	}
	_ = audit.LogEvent(ctx, "employee.deactivated", map[string]any{"employee_profile_id": id, "company_id": actor.CompanyID})
	return nil
}
