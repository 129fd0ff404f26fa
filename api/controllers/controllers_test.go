package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/internal/auctions"
	"github.com/auctionhub/auctionhub-backend/internal/bidding"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
)

// withURLParams seeds a chi route context so handlers can read path params
// without a full router.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type stubAuctionsService struct {
	event    *models.AuctionEvent
	snapshot *auctions.Snapshot
	sales    []models.SaleRecord
	err      error

	createInput auctions.CreateEventInput
	assignedIDs []uuid.UUID
}

func (s *stubAuctionsService) CreateEvent(ctx context.Context, input auctions.CreateEventInput) (*models.AuctionEvent, error) {
	s.createInput = input
	return s.event, s.err
}

func (s *stubAuctionsService) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.AuctionEvent, error) {
	return s.event, s.err
}

func (s *stubAuctionsService) AssignItems(ctx context.Context, eventID uuid.UUID, itemIDs []uuid.UUID) (*models.AuctionEvent, error) {
	s.assignedIDs = itemIDs
	return s.event, s.err
}

func (s *stubAuctionsService) Snapshot(ctx context.Context, eventID uuid.UUID) (*auctions.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubAuctionsService) ListSales(ctx context.Context, eventID uuid.UUID) ([]models.SaleRecord, error) {
	return s.sales, s.err
}

func (s *stubAuctionsService) FindDueScheduled(ctx context.Context, now time.Time) ([]models.AuctionEvent, error) {
	return nil, s.err
}

type stubEngine struct {
	event  *models.AuctionEvent
	result *bidding.SubmitBidResult
	err    error

	lastAction string
	bidAmount  int64
	bidParty   uuid.UUID
}

func (s *stubEngine) Start(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	s.lastAction = "start"
	return s.event, s.err
}

func (s *stubEngine) Pause(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	s.lastAction = "pause"
	return s.event, s.err
}

func (s *stubEngine) Resume(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	s.lastAction = "resume"
	return s.event, s.err
}

func (s *stubEngine) Cancel(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	s.lastAction = "cancel"
	return s.event, s.err
}

func (s *stubEngine) StartItem(ctx context.Context, eventID, itemID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	s.lastAction = "start_item"
	return s.event, s.err
}

func (s *stubEngine) SubmitBid(ctx context.Context, eventID, itemID, partyID, actorID uuid.UUID, amount int64) (*bidding.SubmitBidResult, error) {
	s.lastAction = "submit_bid"
	s.bidAmount = amount
	s.bidParty = partyID
	return s.result, s.err
}

func (s *stubEngine) FinalizeSold(ctx context.Context, eventID, itemID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	s.lastAction = "finalize_sold"
	return s.event, s.err
}

func (s *stubEngine) FinalizeUnsold(ctx context.Context, eventID, itemID, actorID uuid.UUID) (*models.AuctionEvent, error) {
	s.lastAction = "finalize_unsold"
	return s.event, s.err
}

func (s *stubEngine) UpdateSettings(ctx context.Context, eventID uuid.UUID, input auctions.UpdateSettingsInput) (*models.AuctionEvent, error) {
	s.lastAction = "update_settings"
	return s.event, s.err
}

func (s *stubEngine) Stop() {}

type stubBiddingService struct {
	bids    []models.Bid
	winning *models.Bid
	err     error
}

func (s *stubBiddingService) SubmitBid(ctx context.Context, input bidding.SubmitBidInput) (*bidding.SubmitBidResult, error) {
	return nil, s.err
}

func (s *stubBiddingService) GetWinningBid(ctx context.Context, eventID, itemID uuid.UUID) (*models.Bid, error) {
	return s.winning, s.err
}

func (s *stubBiddingService) ListItemBids(ctx context.Context, eventID, itemID uuid.UUID) ([]models.Bid, error) {
	return s.bids, s.err
}

type stubBudgetService struct {
	balance  *models.EventBudget
	balances []models.EventBudget
	err      error
}

func (s *stubBudgetService) GetOrCreate(ctx context.Context, partyID, eventID uuid.UUID, allocation int64) (*models.EventBudget, error) {
	return s.balance, s.err
}

func (s *stubBudgetService) Get(ctx context.Context, partyID, eventID uuid.UUID) (*models.EventBudget, error) {
	return s.balance, s.err
}

func (s *stubBudgetService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventBudget, error) {
	return s.balances, s.err
}

func (s *stubBudgetService) Debit(ctx context.Context, tx *gorm.DB, partyID, eventID uuid.UUID, amount int64) (*models.EventBudget, error) {
	return s.balance, s.err
}
