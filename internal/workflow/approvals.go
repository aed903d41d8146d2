// Package workflow implements the pending → approved/rejected company review.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"wastetrack/internal/api"
	"wastetrack/internal/database"
	"wastetrack/internal/models"
	"wastetrack/internal/session"
)

var (
	ErrUnauthorized      = errors.New("workflow: admin role required")
	ErrInvalidTransition = errors.New("workflow: status is not a review decision")
	// ErrStale: решение сохранено, но список pending перечитать не удалось.
	ErrStale = errors.New("workflow: pending list not reloaded")
)

const UnauthorizedMessage = "Unauthorized: You must be an admin to perform this action."

type CompanyAPI interface {
	List(ctx context.Context) ([]models.Company, error)
	Get(ctx context.Context, id int) (models.Company, error)
	SetStatus(ctx context.Context, token string, id int, status models.CompanyStatus) error
}

type Recorder interface {
	Record(ctx context.Context, actor models.User, entity string, entityID int, action, details string)
}

type Approvals struct {
	companies CompanyAPI
	journal   Recorder
	log       zerolog.Logger
}

// NewApprovals: journal may be nil.
func NewApprovals(companies CompanyAPI, journal Recorder, log zerolog.Logger) *Approvals {
	return &Approvals{
		companies: companies,
		journal:   journal,
		log:       log.With().Str("component", "approvals").Logger(),
	}
}

// ListPending фильтрует pending на нашей стороне, API отдаёт весь список.
func (a *Approvals) ListPending(ctx context.Context) ([]models.Company, error) {
	all, err := a.companies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	pending := make([]models.Company, 0, len(all))
	for _, c := range all {
		if c.Status == models.StatusPending {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

// SetStatus applies a review decision and then re-fetches the pending list.
// The company is read first: only a pending company can be decided on.
// A failed decision leaves nothing changed and returns no list.
func (a *Approvals) SetStatus(ctx context.Context, actor session.State, id int, status models.CompanyStatus) ([]models.Company, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if !models.CanTransition(models.StatusPending, status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransition, status)
	}

	co, err := a.companies.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load company %d: %w", id, err)
	}
	// решение по компании уже принято (например, во второй вкладке)
	if !models.CanTransition(co.Status, status) {
		a.log.Info().Int("company_id", id).Str("from", string(co.Status)).Str("to", string(status)).Msg("company already reviewed")
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, co.Status, status)
	}

	if err := a.companies.SetStatus(ctx, actor.Token, id, status); err != nil {
		a.log.Warn().Err(err).Int("company_id", id).Str("status", string(status)).Msg("status update rejected")
		return nil, fmt.Errorf("set company %d status: %w", id, err)
	}

	a.log.Info().Int("company_id", id).Str("status", string(status)).Str("by", actor.Username()).Msg("company reviewed")
	if a.journal != nil {
		a.journal.Record(ctx, *actor.User, database.EntityCompany, id, "status_change", "status set to "+string(status))
	}

	pending, err := a.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStale, err)
	}
	return pending, nil
}

// Message is the text shown to the admin for a failed decision.
func Message(err error, status models.CompanyStatus) string {
	if errors.Is(err, ErrUnauthorized) || api.IsUnauthorized(err) || api.IsForbidden(err) {
		return UnauthorizedMessage
	}
	if errors.Is(err, ErrStale) {
		return fmt.Sprintf("Company status updated to %s, but the pending list could not be reloaded.", status)
	}
	return api.Message(err, fmt.Sprintf("Failed to update company status to %s.", status))
}

// OwnerCanEdit: владелец правит карточку только после одобрения.
func OwnerCanEdit(c models.Company) bool {
	return c.Status == models.StatusApproved
}
