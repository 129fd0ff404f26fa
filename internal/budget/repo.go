package budget

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
)

// Repository manages persistence for per-event party budgets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, budget *models.EventBudget) error
	Find(ctx context.Context, partyID, eventID uuid.UUID) (*models.EventBudget, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventBudget, error)
	// Debit applies a guarded increment to spent. Returns the number of rows
	// updated: zero means the row is missing or the debit would overspend.
	Debit(ctx context.Context, partyID, eventID uuid.UUID, amount int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a budget repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, budget *models.EventBudget) error {
	return r.db.WithContext(ctx).Create(budget).Error
}

func (r *repository) Find(ctx context.Context, partyID, eventID uuid.UUID) (*models.EventBudget, error) {
	var budget models.EventBudget
	err := r.db.WithContext(ctx).
		Where("party_id = ? AND event_id = ?", partyID, eventID).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &budget, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventBudget, error) {
	var budgets []models.EventBudget
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *repository) Debit(ctx context.Context, partyID, eventID uuid.UUID, amount int64) (int64, error) {
	// spent <= allocated is enforced here, in the WHERE clause, so the
	// invariant holds even if two finalizations race across processes.
	res := r.db.WithContext(ctx).Model(&models.EventBudget{}).
		Where("party_id = ? AND event_id = ? AND spent + ? <= allocated", partyID, eventID, amount).
		UpdateColumns(map[string]any{
			"spent":      gorm.Expr("spent + ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
