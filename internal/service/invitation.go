package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mrjaketay/timeApp-sub001/internal/audit"
	"github.com/mrjaketay/timeApp-sub001/internal/database"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/obs"
	"github.com/mrjaketay/timeApp-sub001/internal/queue"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
	"github.com/mrjaketay/timeApp-sub001/internal/utils"
)

// CreateInvitationInput is what an employer supplies.
type CreateInvitationInput struct {
	Name       string
	Email      string
	EmployeeID string
	Phone      string
	Address    string
}

// CompanySummary is the part of a company shown to an invitee.
type CompanySummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	InvitationMessage string `json:"invitationMessage,omitempty"`
}

// InvitationView is returned by Validate, also alongside Expired and
// already-accepted errors so the caller can show the current status.
type InvitationView struct {
	*model.Invitation
	Company CompanySummary `json:"company"`
}

// InvitationService runs the PENDING -> ACCEPTED | EXPIRED lifecycle.
type InvitationService struct {
	db          *sql.DB
	Invitations *repository.InvitationRepo
	Employees   *repository.EmployeeRepo
	Companies   *repository.CompanyRepo
	Events      queue.Publisher
	TTL         time.Duration
	Now         func() time.Time
}

func NewInvitationService(db *sql.DB, inv *repository.InvitationRepo, emp *repository.EmployeeRepo, comp *repository.CompanyRepo, events queue.Publisher, ttl time.Duration) *InvitationService {
	return &InvitationService{db: db, Invitations: inv, Employees: emp, Companies: comp, Events: events, TTL: ttl, Now: func() time.Time { return time.Now().UTC() }}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Create issues a PENDING invitation for the actor's company.
func (s *InvitationService) Create(ctx context.Context, actor *Actor, in CreateInvitationInput) (*model.Invitation, error) {
	if err := requireEmployer(actor); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, validationf("name is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, validationf("a valid email is required")
	}
	empID := optional(in.EmployeeID)

	exists, err := s.Employees.ExistsInCompany(ctx, actor.CompanyID, in.Email, empID)
	if err != nil {
		return nil, internal("check employee", err)
	}
	if exists {
		return nil, conflict(MsgEmployeeExists)
	}
	if empID != nil {
		owner, err := s.Employees.EmployeeIDOwner(ctx, *empID)
		if err != nil {
			return nil, internal("check employee id", err)
		}
		if owner != "" {
			return nil, conflict(MsgEmployeeIDTaken)
		}
	}

	token, err := utils.NewInvitationToken()
	if err != nil {
		return nil, internal("generate token", err)
	}
	inv := &model.Invitation{
		Token:      token,
		CompanyID:  actor.CompanyID,
		InvitedBy:  actor.UserID,
		Email:      in.Email,
		Name:       in.Name,
		EmployeeID: empID,
		Phone:      optional(in.Phone),
		Address:    optional(in.Address),
		ExpiresAt:  s.Now().Add(s.TTL),
		CreatedAt:  s.Now(),
	}
	if err := s.Invitations.Create(ctx, inv); err != nil {
		return nil, internal("create invitation", err)
	}

	obs.InvitationTransitions.WithLabelValues(string(model.InvitationPending)).Inc()
	_ = audit.LogEvent(ctx, "invitation.created", map[string]any{"invitation_id": inv.ID, "company_id": inv.CompanyID, "email": inv.Email})
	queue.Emit(ctx, s.Events, queue.InvitationCreated, inv.CompanyID, queue.InvitationCreatedEvent{
		InvitationID: inv.ID, Email: inv.Email, Name: inv.Name, Token: inv.Token, ExpiresAt: inv.ExpiresAt,
	})
	return inv, nil
}

// List returns the actor's company invitations, newest first.
func (s *InvitationService) List(ctx context.Context, actor *Actor) ([]model.Invitation, error) {
	if err := requireEmployer(actor); err != nil {
		return nil, err
	}
	out, err := s.Invitations.ListByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, internal("list invitations", err)
	}
	return out, nil
}

// Validate looks the token up and applies lazy expiry.  For Expired and
// already-accepted outcomes the view is returned together with the error.
func (s *InvitationService) Validate(ctx context.Context, token string) (*InvitationView, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, validationf("token is required")
	}
	inv, err := s.Invitations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return nil, notFound(MsgInvitationNotFound)
		}
		return nil, internal("load invitation", err)
	}
	company, err := s.Companies.GetByID(ctx, inv.CompanyID)
	if err != nil {
		return nil, internal("load company", err)
	}
	view := &InvitationView{Invitation: inv, Company: CompanySummary{ID: company.ID, Name: company.Name, InvitationMessage: company.InvitationMessage}}

	switch {
	case inv.Status == model.InvitationAccepted:
		return view, conflict(MsgInvitationAccepted)
	case inv.Status == model.InvitationExpired:
		return view, expired(MsgInvitationExpired)
	case inv.IsExpired(s.Now()):
		changed, err := s.Invitations.MarkExpired(ctx, inv.ID)
		if err != nil {
			return nil, internal("expire invitation", err)
		}
		if changed {
			obs.InvitationTransitions.WithLabelValues(string(model.InvitationExpired)).Inc()
		}
		inv.Status = model.InvitationExpired
		return view, expired(MsgInvitationExpired)
	}
	return view, nil
}

// Accept turns a PENDING invitation into an active EmployeeProfile.  The
// profile insert and the status change commit together; the invitation
// row is locked for the duration so concurrent accepts serialize.
func (s *InvitationService) Accept(ctx context.Context, token string) (*model.EmployeeProfile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, validationf("token is required")
	}

	var (
		inv         *model.Invitation
		profile     *model.EmployeeProfile
		justExpired bool
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		inv, err = s.Invitations.GetByTokenForUpdateTx(ctx, tx, token)
		if err != nil {
			if errors.Is(err, repository.ErrInvitationNotFound) {
				return notFound(MsgInvitationNotFound)
			}
			return internal("load invitation", err)
		}
		switch {
		case inv.Status == model.InvitationAccepted:
			return conflict(MsgInvitationAccepted)
		case inv.Status == model.InvitationExpired:
			return expired(MsgInvitationExpired)
		case inv.IsExpired(s.Now()):
			if _, err := s.Invitations.MarkExpiredTx(ctx, tx, inv.ID); err != nil {
				return internal("expire invitation", err)
			}
			justExpired = true
			return nil
		}

		exists, err := s.Employees.ExistsInCompanyTx(ctx, tx, inv.CompanyID, inv.Email, inv.EmployeeID)
		if err != nil {
			return internal("check employee", err)
		}
		if exists {
			return conflict(MsgEmployeeExists)
		}
		if inv.EmployeeID != nil {
			owner, err := s.Employees.EmployeeIDOwnerTx(ctx, tx, *inv.EmployeeID)
			if err != nil {
				return internal("check employee id", err)
			}
			if owner != "" && owner != inv.CompanyID {
				return conflict(MsgEmployeeIDTaken)
			}
		}

		profile = &model.EmployeeProfile{
			CompanyID:  inv.CompanyID,
			Name:       inv.Name,
			Email:      inv.Email,
			EmployeeID: inv.EmployeeID,
			Phone:      inv.Phone,
			Address:    inv.Address,
			IsActive:   true,
		}
		if err := s.Employees.CreateTx(ctx, tx, profile); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return conflict(MsgEmployeeExists)
			}
			return internal("create employee", err)
		}
		if err := s.Invitations.MarkAcceptedTx(ctx, tx, inv.ID, s.Now()); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return conflict(MsgInvitationAccepted)
			}
			return internal("accept invitation", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("accept invitation", err)
	}
	if justExpired {
		obs.InvitationTransitions.WithLabelValues(string(model.InvitationExpired)).Inc()
		return nil, expired(MsgInvitationExpired)
	}

	obs.InvitationTransitions.WithLabelValues(string(model.InvitationAccepted)).Inc()
	_ = audit.LogEvent(ctx, "invitation.accepted", map[string]any{"invitation_id": inv.ID, "employee_profile_id": profile.ID, "company_id": inv.CompanyID})
	queue.Emit(ctx, s.Events, queue.InvitationAccepted, inv.CompanyID, queue.InvitationAcceptedEvent{
		InvitationID: inv.ID, EmployeeProfileID: profile.ID, Email: profile.Email,
	})
	return profile, nil
}
