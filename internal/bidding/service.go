package bidding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhub/auctionhub-backend/internal/budget"
	"github.com/auctionhub/auctionhub-backend/pkg/db"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/enums"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service arbitrates bids. Callers are expected to serialize submissions per
// event; the winning-bid unique index remains the final arbiter either way,
// so a race that slips through any serialization surfaces as StaleBid.
type Service interface {
	SubmitBid(ctx context.Context, input SubmitBidInput) (*SubmitBidResult, error)
	GetWinningBid(ctx context.Context, eventID, itemID uuid.UUID) (*models.Bid, error)
	ListItemBids(ctx context.Context, eventID, itemID uuid.UUID) ([]models.Bid, error)
}

// SubmitBidInput carries a proposed bid together with the event and item
// state the caller holds. Event and Item come from the per-event worker, so
// they reflect the serialized view of the auction.
type SubmitBidInput struct {
	Event   *models.AuctionEvent
	Item    *models.Item
	PartyID uuid.UUID
	ActorID uuid.UUID
	Amount  int64
}

// SubmitBidResult is the accepted bid plus what broadcast consumers need.
type SubmitBidResult struct {
	Bid                 *models.Bid
	NextValidAmount     *int64
	PreviousWinnerParty *uuid.UUID
	PreviousAmount      *int64
}

type service struct {
	repo    Repository
	budgets budget.Service
	tx      TxRunner
}

// NewService wires the arbitration service.
func NewService(repo Repository, budgets budget.Service, tx TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bid repository required")
	}
	if budgets == nil {
		return nil, fmt.Errorf("budget service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, budgets: budgets, tx: tx}, nil
}

func (s *service) SubmitBid(ctx context.Context, input SubmitBidInput) (*SubmitBidResult, error) {
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}
	event, item := input.Event, input.Item

	if event.Status != enums.AuctionStatusLive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("auction is %s, bids require a live auction", event.Status)).
			WithReason(pkgerrors.ReasonAuctionNotLive)
	}
	if event.CurrentItemID == nil || *event.CurrentItemID != item.ID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "item is not currently offered").
			WithReason(pkgerrors.ReasonNotCurrentItem)
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid amount must be positive")
	}
	if input.Amount > event.MaxBidCap {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("bid of %d exceeds the bid cap %d", input.Amount, event.MaxBidCap))
	}

	tiers, err := event.Tiers()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode increment tiers")
	}

	top, err := s.repo.GetWinning(ctx, event.ID, item.ID)
	if err != nil {
		return nil, err
	}
	current := item.BasePrice
	if top != nil {
		current = top.Amount
	}

	// A bid that no longer beats the observed top lost a race against another
	// submission; the caller re-reads the top and retries, so this is a
	// conflict rather than a validation failure.
	if top != nil && input.Amount <= top.Amount {
		return nil, staleBid(top.Amount)
	}

	minimum, ok := NextValidAmount(tiers, current, event.MaxBidCap)
	if !ok {
		if current < event.MaxBidCap && !TierCovers(tiers, current) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("no increment tier covers the current amount %d", current))
		}
		return nil, pkgerrors.New(pkgerrors.CodeResourceExhausted,
			fmt.Sprintf("bidding has reached the cap of %d for this item", event.MaxBidCap)).
			WithReason(pkgerrors.ReasonMaxBidReached)
	}
	if input.Amount < minimum {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("bid of %d is below the minimum next amount %d", input.Amount, minimum)).
			WithReason(pkgerrors.ReasonBelowMinimumIncrement)
	}

	partyBudget, err := s.budgets.GetOrCreate(ctx, input.PartyID, event.ID, event.StartingBudget)
	if err != nil {
		return nil, err
	}
	if partyBudget.Remaining() < input.Amount {
		return nil, pkgerrors.New(pkgerrors.CodeResourceExhausted,
			fmt.Sprintf("bid of %d exceeds remaining budget %d", input.Amount, partyBudget.Remaining())).
			WithReason(pkgerrors.ReasonInsufficientBudget)
	}

	if event.MaxItemsPerParty > 0 {
		won, err := s.repo.CountWinningByParty(ctx, event.ID, input.PartyID, item.ID)
		if err != nil {
			return nil, err
		}
		if won >= int64(event.MaxItemsPerParty) {
			return nil, pkgerrors.New(pkgerrors.CodeResourceExhausted,
				fmt.Sprintf("party already holds %d of %d items", won, event.MaxItemsPerParty)).
				WithReason(pkgerrors.ReasonTeamCapacityExceeded)
		}
	}

	bid := &models.Bid{
		ID:           uuid.New(),
		EventID:      event.ID,
		ItemID:       item.ID,
		PartyID:      input.PartyID,
		ActorID:      input.ActorID,
		Amount:       input.Amount,
		IsWinningBid: true,
		Status:       enums.BidStatusWinning,
		BidTime:      time.Now().UTC(),
	}

	// The demote is guarded by the observed winner's id and the insert by
	// ux_bids_winning. Either guard failing means someone else won the race
	// against the same observed top, so the whole transition rolls back.
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if top != nil {
			demoted, err := repo.Demote(ctx, top.ID)
			if err != nil {
				return err
			}
			if demoted == 0 {
				return staleBid(current)
			}
		}
		if err := repo.Create(ctx, bid); err != nil {
			if db.IsUniqueViolation(err, "ux_bids_winning") {
				return staleBid(current)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &SubmitBidResult{Bid: bid}
	if next, ok := NextValidAmount(tiers, bid.Amount, event.MaxBidCap); ok {
		result.NextValidAmount = &next
	}
	if top != nil {
		party, amount := top.PartyID, top.Amount
		result.PreviousWinnerParty = &party
		result.PreviousAmount = &amount
	}
	return result, nil
}

func (s *service) GetWinningBid(ctx context.Context, eventID, itemID uuid.UUID) (*models.Bid, error) {
	if eventID == uuid.Nil || itemID == uuid.Nil {
		return nil, fmt.Errorf("event id and item id are required")
	}
	return s.repo.GetWinning(ctx, eventID, itemID)
}

func (s *service) ListItemBids(ctx context.Context, eventID, itemID uuid.UUID) ([]models.Bid, error) {
	if eventID == uuid.Nil || itemID == uuid.Nil {
		return nil, fmt.Errorf("event id and item id are required")
	}
	return s.repo.ListByItem(ctx, eventID, itemID)
}

func validateSubmitInput(input SubmitBidInput) error {
	if input.Event == nil {
		return fmt.Errorf("event is required")
	}
	if input.Item == nil {
		return fmt.Errorf("item is required")
	}
	if input.PartyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "party id is required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}
	return nil
}

func staleBid(observedTop int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict,
		fmt.Sprintf("another bid superseded the observed top of %d, re-read and retry", observedTop)).
		WithReason(pkgerrors.ReasonStaleBid)
}
