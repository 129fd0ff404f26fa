package budget

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
)

type fakeRepository struct {
	findFn   func(ctx context.Context, partyID, eventID uuid.UUID) (*models.EventBudget, error)
	createFn func(ctx context.Context, budget *models.EventBudget) error
	debitFn  func(ctx context.Context, partyID, eventID uuid.UUID, amount int64) (int64, error)
	listFn   func(ctx context.Context, eventID uuid.UUID) ([]models.EventBudget, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, budget *models.EventBudget) error {
	if f.createFn != nil {
		return f.createFn(ctx, budget)
	}
	return nil
}

func (f *fakeRepository) Find(ctx context.Context, partyID, eventID uuid.UUID) (*models.EventBudget, error) {
	if f.findFn != nil {
		return f.findFn(ctx, partyID, eventID)
	}
	return nil, nil
}

func (f *fakeRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventBudget, error) {
	if f.listFn != nil {
		return f.listFn(ctx, eventID)
	}
	return nil, nil
}

func (f *fakeRepository) Debit(ctx context.Context, partyID, eventID uuid.UUID, amount int64) (int64, error) {
	if f.debitFn != nil {
		return f.debitFn(ctx, partyID, eventID, amount)
	}
	return 1, nil
}

func TestService_GetOrCreateProvisionsLazily(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	var created *models.EventBudget
	repo.createFn = func(ctx context.Context, budget *models.EventBudget) error {
		created = budget
		return nil
	}

	partyID, eventID := uuid.New(), uuid.New()
	got, err := svc.GetOrCreate(context.Background(), partyID, eventID, 10000)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if created == nil {
		t.Fatal("expected a budget row to be created")
	}
	if got.PartyID != partyID || got.EventID != eventID || got.Allocated != 10000 {
		t.Fatalf("unexpected budget: %+v", got)
	}
	if got.Spent != 0 {
		t.Fatalf("new budget should start unspent, got %d", got.Spent)
	}
}

func TestService_GetOrCreateReturnsExisting(t *testing.T) {
	existing := &models.EventBudget{ID: uuid.New(), Allocated: 10000, Spent: 3000}
	repo := &fakeRepository{
		findFn: func(ctx context.Context, partyID, eventID uuid.UUID) (*models.EventBudget, error) {
			return existing, nil
		},
		createFn: func(ctx context.Context, budget *models.EventBudget) error {
			t.Fatal("existing budget must not be recreated")
			return nil
		},
	}
	svc, _ := NewService(repo)

	got, err := svc.GetOrCreate(context.Background(), uuid.New(), uuid.New(), 10000)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if got != existing {
		t.Fatal("expected the existing budget back")
	}
}

func TestService_GetOrCreateRaceRereads(t *testing.T) {
	// A concurrent creator wins the unique (party, event) race; the loser
	// must re-read instead of failing.
	winner := &models.EventBudget{ID: uuid.New(), Allocated: 10000}
	firstFind := true
	repo := &fakeRepository{
		findFn: func(ctx context.Context, partyID, eventID uuid.UUID) (*models.EventBudget, error) {
			if firstFind {
				firstFind = false
				return nil, nil
			}
			return winner, nil
		},
		createFn: func(ctx context.Context, budget *models.EventBudget) error {
			return fmt.Errorf("duplicated key not allowed: ux_event_budgets_party_event")
		},
	}
	svc, _ := NewService(repo)

	got, err := svc.GetOrCreate(context.Background(), uuid.New(), uuid.New(), 10000)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if got != winner {
		t.Fatal("expected the concurrently created budget back")
	}
}

func TestService_DebitInsufficientBudget(t *testing.T) {
	repo := &fakeRepository{
		debitFn: func(ctx context.Context, partyID, eventID uuid.UUID, amount int64) (int64, error) {
			return 0, nil
		},
		findFn: func(ctx context.Context, partyID, eventID uuid.UUID) (*models.EventBudget, error) {
			return &models.EventBudget{Allocated: 10000, Spent: 9800}, nil
		},
	}
	svc, _ := NewService(repo)

	_, err := svc.Debit(context.Background(), nil, uuid.New(), uuid.New(), 500)
	if !pkgerrors.HasReason(err, pkgerrors.ReasonInsufficientBudget) {
		t.Fatalf("expected insufficient budget error, got %v", err)
	}
}

func TestService_DebitMissingBudget(t *testing.T) {
	repo := &fakeRepository{
		debitFn: func(ctx context.Context, partyID, eventID uuid.UUID, amount int64) (int64, error) {
			return 0, nil
		},
	}
	svc, _ := NewService(repo)

	_, err := svc.Debit(context.Background(), nil, uuid.New(), uuid.New(), 500)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_DebitValidatesAmount(t *testing.T) {
	svc, _ := NewService(&fakeRepository{})

	if _, err := svc.Debit(context.Background(), nil, uuid.New(), uuid.New(), 0); err == nil {
		t.Fatal("expected non-positive amount to fail")
	}
	if _, err := svc.Debit(context.Background(), nil, uuid.New(), uuid.New(), -5); err == nil {
		t.Fatal("expected negative amount to fail")
	}
}
