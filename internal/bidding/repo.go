package bidding

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/enums"
)

// Repository manages persistence for bids. Bids are append-only: superseded
// winners are relabeled outbid, never deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bid *models.Bid) error
	GetWinning(ctx context.Context, eventID, itemID uuid.UUID) (*models.Bid, error)
	ListByItem(ctx context.Context, eventID, itemID uuid.UUID) ([]models.Bid, error)
	ListWinningByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Bid, error)
	// Demote clears the winning flag on the given bid only if it still holds
	// it. Zero rows updated means another arbitration got there first.
	Demote(ctx context.Context, bidID uuid.UUID) (int64, error)
	CountWinningByParty(ctx context.Context, eventID, partyID uuid.UUID, excludeItemID uuid.UUID) (int64, error)
	HighestBid(ctx context.Context, eventID uuid.UUID) (*models.Bid, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bid repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

func (r *repository) GetWinning(ctx context.Context, eventID, itemID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND item_id = ? AND is_winning_bid = ?", eventID, itemID, true).
		First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bid, nil
}

func (r *repository) ListByItem(ctx context.Context, eventID, itemID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND item_id = ?", eventID, itemID).
		Order("bid_time DESC").
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *repository) ListWinningByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND is_winning_bid = ?", eventID, true).
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *repository) Demote(ctx context.Context, bidID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Bid{}).
		Where("id = ? AND is_winning_bid = ?", bidID, true).
		UpdateColumns(map[string]any{
			"is_winning_bid": false,
			"status":         enums.BidStatusOutbid,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) CountWinningByParty(ctx context.Context, eventID, partyID uuid.UUID, excludeItemID uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Bid{}).
		Where("event_id = ? AND party_id = ? AND is_winning_bid = ?", eventID, partyID, true)
	if excludeItemID != uuid.Nil {
		query = query.Where("item_id <> ?", excludeItemID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) HighestBid(ctx context.Context, eventID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("amount DESC").
		First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bid, nil
}
