package controllers

import (
	"net/http"

	"github.com/auctionhub/auctionhub-backend/api/responses"
	"github.com/auctionhub/auctionhub-backend/api/validators"
	"github.com/auctionhub/auctionhub-backend/internal/bidding"
	"github.com/auctionhub/auctionhub-backend/internal/engine"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
	"github.com/auctionhub/auctionhub-backend/pkg/logger"
)

type submitBidRequest struct {
	Amount int64 `json:"amount" validate:"required,min=1"`
}

type submitBidResponse struct {
	BidID           string `json:"bid_id"`
	Amount          int64  `json:"amount"`
	NextValidAmount *int64 `json:"next_valid_amount,omitempty"`
}

// SubmitBid places a bid on the item currently on the block. The party comes
// from the bidder's token, never from the request body.
func SubmitBid(eng engine.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eng == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auction engine unavailable"))
			return
		}

		auctionID, err := uuidParam(r, "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partyID, err := partyFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitBidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := eng.SubmitBid(r.Context(), auctionID, itemID, partyID, actorID, payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, submitBidResponse{
			BidID:           result.Bid.ID.String(),
			Amount:          result.Bid.Amount,
			NextValidAmount: result.NextValidAmount,
		})
	}
}

// ListItemBids returns the full bid history for an item, newest first.
func ListItemBids(svc bidding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bids, err := svc.ListItemBids(r.Context(), auctionID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(bids) > limit {
			bids = bids[:limit]
		}

		responses.WriteSuccess(w, bids)
	}
}

// GetWinningBid returns the current top bid for an item, if any.
func GetWinningBid(svc bidding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bid, err := svc.GetWinningBid(r.Context(), auctionID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if bid == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no winning bid for this item"))
			return
		}

		responses.WriteSuccess(w, bid)
	}
}
