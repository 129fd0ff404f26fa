package auctions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/enums"
)

// Repository manages persistence for auction events, their item rosters and
// sale records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateEvent(ctx context.Context, event *models.AuctionEvent) error
	FindEvent(ctx context.Context, eventID uuid.UUID) (*models.AuctionEvent, error)
	UpdateEvent(ctx context.Context, eventID uuid.UUID, columns map[string]any) error
	FindDueScheduled(ctx context.Context, now time.Time) ([]models.AuctionEvent, error)

	FindItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error)
	ListEventItems(ctx context.Context, eventID uuid.UUID) ([]models.Item, error)
	AssignItem(ctx context.Context, itemID, eventID uuid.UUID) (int64, error)
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status enums.ItemStatus) error

	CreateSaleRecord(ctx context.Context, record *models.SaleRecord) error
	ListSaleRecords(ctx context.Context, eventID uuid.UUID) ([]models.SaleRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an auctions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEvent(ctx context.Context, event *models.AuctionEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) FindEvent(ctx context.Context, eventID uuid.UUID) (*models.AuctionEvent, error) {
	var event models.AuctionEvent
	err := r.db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) UpdateEvent(ctx context.Context, eventID uuid.UUID, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	if _, ok := columns["updated_at"]; !ok {
		columns["updated_at"] = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Model(&models.AuctionEvent{}).
		Where("id = ?", eventID).
		UpdateColumns(columns).Error
}

func (r *repository) FindDueScheduled(ctx context.Context, now time.Time) ([]models.AuctionEvent, error) {
	var events []models.AuctionEvent
	if err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", enums.AuctionStatusScheduled, now).
		Order("scheduled_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListEventItems(ctx context.Context, eventID uuid.UUID) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("base_price ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AssignItem claims an unassigned item for the event roster. Zero rows means
// the item is missing or already belongs to an event.
func (r *repository) AssignItem(ctx context.Context, itemID, eventID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND event_id IS NULL", itemID).
		UpdateColumns(map[string]any{
			"event_id":   eventID,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status enums.ItemStatus) error {
	return r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", itemID).
		UpdateColumns(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) CreateSaleRecord(ctx context.Context, record *models.SaleRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListSaleRecords(ctx context.Context, eventID uuid.UUID) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("sold_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
