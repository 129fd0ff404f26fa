package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/pkg/db"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
)

// Service is the budget ledger. GetOrCreate lazily provisions a party's
// balance the first time it is observed in an event; Debit is only invoked
// from sale finalization, never speculatively during bidding.
type Service interface {
	GetOrCreate(ctx context.Context, partyID, eventID uuid.UUID, allocation int64) (*models.EventBudget, error)
	Get(ctx context.Context, partyID, eventID uuid.UUID) (*models.EventBudget, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventBudget, error)
	Debit(ctx context.Context, tx *gorm.DB, partyID, eventID uuid.UUID, amount int64) (*models.EventBudget, error)
}

type service struct {
	repo Repository
}

// NewService wires a budget service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("budget repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetOrCreate(ctx context.Context, partyID, eventID uuid.UUID, allocation int64) (*models.EventBudget, error) {
	if partyID == uuid.Nil {
		return nil, fmt.Errorf("party id is required")
	}
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event id is required")
	}
	if allocation < 0 {
		return nil, fmt.Errorf("allocation must be non-negative, got %d", allocation)
	}

	existing, err := s.repo.Find(ctx, partyID, eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	budget := &models.EventBudget{
		PartyID:   partyID,
		EventID:   eventID,
		Allocated: allocation,
	}
	if err := s.repo.Create(ctx, budget); err != nil {
		// Another caller created the row between our read and write; the
		// unique (party, event) pair makes the re-read authoritative.
		if db.IsUniqueViolation(err, "ux_event_budgets_party_event") {
			return s.repo.Find(ctx, partyID, eventID)
		}
		return nil, err
	}
	return budget, nil
}

func (s *service) Get(ctx context.Context, partyID, eventID uuid.UUID) (*models.EventBudget, error) {
	budget, err := s.repo.Find(ctx, partyID, eventID)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "budget not found")
	}
	return budget, nil
}

func (s *service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventBudget, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event id is required")
	}
	return s.repo.ListByEvent(ctx, eventID)
}

// Debit runs inside the caller's transaction when tx is non-nil, so the
// ledger write commits or rolls back with the rest of the finalization.
func (s *service) Debit(ctx context.Context, tx *gorm.DB, partyID, eventID uuid.UUID, amount int64) (*models.EventBudget, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	repo := s.repo.WithTx(tx)
	updated, err := repo.Debit(ctx, partyID, eventID, amount)
	if err != nil {
		return nil, err
	}
	if updated == 0 {
		budget, findErr := repo.Find(ctx, partyID, eventID)
		if findErr != nil {
			return nil, findErr
		}
		if budget == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "budget not found")
		}
		return nil, pkgerrors.New(pkgerrors.CodeResourceExhausted,
			fmt.Sprintf("debit of %d exceeds remaining balance %d", amount, budget.Remaining())).
			WithReason(pkgerrors.ReasonInsufficientBudget)
	}
	return repo.Find(ctx, partyID, eventID)
}
