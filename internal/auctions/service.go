package auctions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/internal/bidding"
	"github.com/auctionhub/auctionhub-backend/pkg/config"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/enums"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
)

// Service is the operator-facing surface for events and rosters. Lifecycle
// transitions (start, pause, finalize) belong to the engine; this service
// only covers setup and reads.
type Service interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.AuctionEvent, error)
	GetEvent(ctx context.Context, eventID uuid.UUID) (*models.AuctionEvent, error)
	AssignItems(ctx context.Context, eventID uuid.UUID, itemIDs []uuid.UUID) (*models.AuctionEvent, error)
	Snapshot(ctx context.Context, eventID uuid.UUID) (*Snapshot, error)
	ListSales(ctx context.Context, eventID uuid.UUID) ([]models.SaleRecord, error)
	FindDueScheduled(ctx context.Context, now time.Time) ([]models.AuctionEvent, error)
}

// CreateEventInput names the event and optionally overrides configured
// auction defaults.
type CreateEventInput struct {
	Name               string
	ScheduledAt        *time.Time
	TimerWindowSeconds *int
	StartingBudget     *int64
	MaxBidCap          *int64
	MaxItemsPerParty   *int
	AutoMode           *bool
	IncrementTiers     []models.IncrementTier
}

// UpdateSettingsInput carries partial settings changes. Applying them is the
// engine's job so changes never interleave with bids or deadline handling.
type UpdateSettingsInput struct {
	TimerWindowSeconds *int
	StartingBudget     *int64
	MaxBidCap          *int64
	MaxItemsPerParty   *int
	AutoMode           *bool
	IncrementTiers     []models.IncrementTier
	ScheduledAt        *time.Time
}

// Snapshot is the read view of one event and its roster.
type Snapshot struct {
	Event *models.AuctionEvent `json:"event"`
	Items []models.Item        `json:"items"`
}

type service struct {
	repo Repository
	cfg  config.AuctionConfig
}

// NewService wires the auctions service.
func NewService(repo Repository, cfg config.AuctionConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auctions repository required")
	}
	return &service{repo: repo, cfg: cfg}, nil
}

func (s *service) CreateEvent(ctx context.Context, input CreateEventInput) (*models.AuctionEvent, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event name is required")
	}

	tiers := input.IncrementTiers
	if len(tiers) == 0 {
		tiers = defaultTiers()
	}
	if err := bidding.ValidateTiers(tiers); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid increment tiers")
	}
	encoded, err := json.Marshal(tiers)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode increment tiers")
	}

	event := &models.AuctionEvent{
		ID:                 uuid.New(),
		Name:               input.Name,
		Status:             enums.AuctionStatusDraft,
		TimerWindowSeconds: s.cfg.TimerWindowSeconds,
		StartingBudget:     s.cfg.StartingBudget,
		MaxBidCap:          s.cfg.MaxBidCap,
		MaxItemsPerParty:   s.cfg.MaxItemsPerParty,
		AutoMode:           s.cfg.AutoMode,
		IncrementTiers:     encoded,
		CurrentCategory:    enums.CategoryRotation[0],
		ScheduledAt:        input.ScheduledAt,
	}
	if input.TimerWindowSeconds != nil {
		event.TimerWindowSeconds = *input.TimerWindowSeconds
	}
	if input.StartingBudget != nil {
		event.StartingBudget = *input.StartingBudget
	}
	if input.MaxBidCap != nil {
		event.MaxBidCap = *input.MaxBidCap
	}
	if input.MaxItemsPerParty != nil {
		event.MaxItemsPerParty = *input.MaxItemsPerParty
	}
	if input.AutoMode != nil {
		event.AutoMode = *input.AutoMode
	}
	if err := validateSettings(event); err != nil {
		return nil, err
	}
	if input.ScheduledAt != nil {
		event.Status = enums.AuctionStatusScheduled
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.AuctionEvent, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	event, err := s.repo.FindEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction event not found")
	}
	return event, nil
}

func (s *service) AssignItems(ctx context.Context, eventID uuid.UUID, itemIDs []uuid.UUID) (*models.AuctionEvent, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != enums.AuctionStatusDraft && event.Status != enums.AuctionStatusScheduled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot change the roster of a %s auction", event.Status)).
			WithReason(pkgerrors.ReasonInvalidTransition)
	}
	if len(itemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item id is required")
	}

	assigned := 0
	for _, itemID := range itemIDs {
		claimed, err := s.repo.AssignItem(ctx, itemID, eventID)
		if err != nil {
			return nil, err
		}
		if claimed == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("item %s is missing or already assigned", itemID))
		}
		assigned++
	}

	total := event.TotalItems + assigned
	if err := s.repo.UpdateEvent(ctx, eventID, map[string]any{"total_items": total}); err != nil {
		return nil, err
	}
	event.TotalItems = total
	return event, nil
}

func (s *service) Snapshot(ctx context.Context, eventID uuid.UUID) (*Snapshot, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListEventItems(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Event: event, Items: items}, nil
}

func (s *service) ListSales(ctx context.Context, eventID uuid.UUID) ([]models.SaleRecord, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListSaleRecords(ctx, eventID)
}

func (s *service) FindDueScheduled(ctx context.Context, now time.Time) ([]models.AuctionEvent, error) {
	return s.repo.FindDueScheduled(ctx, now)
}

func validateSettings(event *models.AuctionEvent) error {
	if event.TimerWindowSeconds <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "timer window must be positive")
	}
	if event.StartingBudget <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "starting budget must be positive")
	}
	if event.MaxBidCap <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max bid cap must be positive")
	}
	if event.MaxItemsPerParty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max items per party must be non-negative")
	}
	return nil
}

func defaultTiers() []models.IncrementTier {
	to := func(v int64) *int64 { return &v }
	return []models.IncrementTier{
		{From: 0, To: to(50), Step: 5},
		{From: 50, To: to(100), Step: 10},
		{From: 100, Step: 15},
	}
}
