package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/api/responses"
	"github.com/auctionhub/auctionhub-backend/api/validators"
	"github.com/auctionhub/auctionhub-backend/internal/auctions"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
	"github.com/auctionhub/auctionhub-backend/pkg/logger"
)

type incrementTierRequest struct {
	From int64  `json:"from"`
	To   *int64 `json:"to"`
	Step int64  `json:"step" validate:"required"`
}

type createAuctionRequest struct {
	Name               string                 `json:"name" validate:"required,min=1,max=200"`
	ScheduledAt        *time.Time             `json:"scheduled_at"`
	TimerWindowSeconds *int                   `json:"timer_window_seconds"`
	StartingBudget     *int64                 `json:"starting_budget"`
	MaxBidCap          *int64                 `json:"max_bid_cap"`
	MaxItemsPerParty   *int                   `json:"max_items_per_party"`
	AutoMode           *bool                  `json:"auto_mode"`
	IncrementTiers     []incrementTierRequest `json:"increment_tiers"`
}

func tiersFromRequest(in []incrementTierRequest) []models.IncrementTier {
	if len(in) == 0 {
		return nil
	}
	tiers := make([]models.IncrementTier, 0, len(in))
	for _, tier := range in {
		tiers = append(tiers, models.IncrementTier{From: tier.From, To: tier.To, Step: tier.Step})
	}
	return tiers
}

// CreateAuction provisions a new auction event in draft (or scheduled, when a
// start time is given).
func CreateAuction(svc auctions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auctions service unavailable"))
			return
		}

		var payload createAuctionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.CreateEvent(r.Context(), auctions.CreateEventInput{
			Name:               validators.SanitizeString(payload.Name, 200),
			ScheduledAt:        payload.ScheduledAt,
			TimerWindowSeconds: payload.TimerWindowSeconds,
			StartingBudget:     payload.StartingBudget,
			MaxBidCap:          payload.MaxBidCap,
			MaxItemsPerParty:   payload.MaxItemsPerParty,
			AutoMode:           payload.AutoMode,
			IncrementTiers:     tiersFromRequest(payload.IncrementTiers),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

// GetAuction returns the event with its full item roster.
func GetAuction(svc auctions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// ListSales returns the committed sale records for an event, oldest first.
func ListSales(svc auctions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sales, err := svc.ListSales(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sales)
	}
}

type assignItemsRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1"`
}

// AssignItems attaches items to an auction that has not started yet.
func AssignItems(svc auctions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemIDs := make([]uuid.UUID, 0, len(payload.ItemIDs))
		for _, raw := range payload.ItemIDs {
			id, parseErr := uuid.Parse(strings.TrimSpace(raw))
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid item id").
						WithDetails(map[string]any{"item_id": raw}))
				return
			}
			itemIDs = append(itemIDs, id)
		}

		event, err := svc.AssignItems(r.Context(), auctionID, itemIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, event)
	}
}
