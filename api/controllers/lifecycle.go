package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/api/responses"
	"github.com/auctionhub/auctionhub-backend/api/validators"
	"github.com/auctionhub/auctionhub-backend/internal/auctions"
	"github.com/auctionhub/auctionhub-backend/internal/engine"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/logger"
)

// lifecycleAction routes one operator lifecycle transition through the engine.
func lifecycleAction(
	logg *logger.Logger,
	fn func(r *http.Request, auctionID, actorID uuid.UUID) (*models.AuctionEvent, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := fn(r, auctionID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

// StartAuction flips a draft or scheduled auction live.
func StartAuction(eng engine.Service, logg *logger.Logger) http.HandlerFunc {
	return lifecycleAction(logg, func(r *http.Request, auctionID, actorID uuid.UUID) (*models.AuctionEvent, error) {
		return eng.Start(r.Context(), auctionID, actorID)
	})
}

// PauseAuction suspends a live auction.
func PauseAuction(eng engine.Service, logg *logger.Logger) http.HandlerFunc {
	return lifecycleAction(logg, func(r *http.Request, auctionID, actorID uuid.UUID) (*models.AuctionEvent, error) {
		return eng.Pause(r.Context(), auctionID, actorID)
	})
}

// ResumeAuction puts a paused auction back live.
func ResumeAuction(eng engine.Service, logg *logger.Logger) http.HandlerFunc {
	return lifecycleAction(logg, func(r *http.Request, auctionID, actorID uuid.UUID) (*models.AuctionEvent, error) {
		return eng.Resume(r.Context(), auctionID, actorID)
	})
}

// CancelAuction aborts a pre-completed auction.
func CancelAuction(eng engine.Service, logg *logger.Logger) http.HandlerFunc {
	return lifecycleAction(logg, func(r *http.Request, auctionID, actorID uuid.UUID) (*models.AuctionEvent, error) {
		return eng.Cancel(r.Context(), auctionID, actorID)
	})
}

// StartItem puts a specific item on the block.
func StartItem(eng engine.Service, logg *logger.Logger) http.HandlerFunc {
	return lifecycleAction(logg, func(r *http.Request, auctionID, actorID uuid.UUID) (*models.AuctionEvent, error) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			return nil, err
		}
		return eng.StartItem(r.Context(), auctionID, itemID, actorID)
	})
}

// FinalizeSold closes the current item as sold to its winning bidder.
func FinalizeSold(eng engine.Service, logg *logger.Logger) http.HandlerFunc {
	return lifecycleAction(logg, func(r *http.Request, auctionID, actorID uuid.UUID) (*models.AuctionEvent, error) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			return nil, err
		}
		return eng.FinalizeSold(r.Context(), auctionID, itemID, actorID)
	})
}

// FinalizeUnsold closes the current item as permanently unsold.
func FinalizeUnsold(eng engine.Service, logg *logger.Logger) http.HandlerFunc {
	return lifecycleAction(logg, func(r *http.Request, auctionID, actorID uuid.UUID) (*models.AuctionEvent, error) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			return nil, err
		}
		return eng.FinalizeUnsold(r.Context(), auctionID, itemID, actorID)
	})
}

type updateSettingsRequest struct {
	TimerWindowSeconds *int                   `json:"timer_window_seconds"`
	StartingBudget     *int64                 `json:"starting_budget"`
	MaxBidCap          *int64                 `json:"max_bid_cap"`
	MaxItemsPerParty   *int                   `json:"max_items_per_party"`
	AutoMode           *bool                  `json:"auto_mode"`
	IncrementTiers     []incrementTierRequest `json:"increment_tiers"`
	ScheduledAt        *time.Time             `json:"scheduled_at"`
}

// UpdateAuctionSettings applies partial settings changes through the engine so
// they serialize with live bidding.
func UpdateAuctionSettings(eng engine.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := eng.UpdateSettings(r.Context(), auctionID, auctions.UpdateSettingsInput{
			TimerWindowSeconds: payload.TimerWindowSeconds,
			StartingBudget:     payload.StartingBudget,
			MaxBidCap:          payload.MaxBidCap,
			MaxItemsPerParty:   payload.MaxItemsPerParty,
			AutoMode:           payload.AutoMode,
			IncrementTiers:     tiersFromRequest(payload.IncrementTiers),
			ScheduledAt:        payload.ScheduledAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, event)
	}
}
