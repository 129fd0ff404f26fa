package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/api/middleware"
	"github.com/auctionhub/auctionhub-backend/internal/bidding"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
)

func bidRequest(t *testing.T, eventID, itemID uuid.UUID, amount int64, actorID, partyID string) *http.Request {
	t.Helper()
	body, _ := json.Marshal(map[string]int64{"amount": amount})
	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/auctions/"+eventID.String()+"/items/"+itemID.String()+"/bids",
		bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParams(req, map[string]string{
		"auctionID": eventID.String(),
		"itemID":    itemID.String(),
	})
	ctx := req.Context()
	if actorID != "" {
		ctx = middleware.WithActorID(ctx, actorID)
	}
	if partyID != "" {
		ctx = middleware.WithPartyID(ctx, partyID)
	}
	return req.WithContext(ctx)
}

func TestSubmitBidSuccess(t *testing.T) {
	eventID := uuid.New()
	itemID := uuid.New()
	partyID := uuid.New()
	next := int64(110)
	eng := &stubEngine{result: &bidding.SubmitBidResult{
		Bid:             &models.Bid{ID: uuid.New(), Amount: 100, PartyID: partyID},
		NextValidAmount: &next,
	}}
	handler := SubmitBid(eng, nil)

	req := bidRequest(t, eventID, itemID, 100, uuid.New().String(), partyID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if eng.bidAmount != 100 {
		t.Fatalf("expected amount 100 forwarded got %d", eng.bidAmount)
	}
	if eng.bidParty != partyID {
		t.Fatalf("party must come from the token, got %s", eng.bidParty)
	}

	var envelope struct {
		Data submitBidResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NextValidAmount == nil || *envelope.Data.NextValidAmount != 110 {
		t.Fatalf("expected next valid amount 110 got %v", envelope.Data.NextValidAmount)
	}
}

func TestSubmitBidWithoutPartyForbidden(t *testing.T) {
	handler := SubmitBid(&stubEngine{}, nil)

	req := bidRequest(t, uuid.New(), uuid.New(), 100, uuid.New().String(), "")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestSubmitBidStaleConflict(t *testing.T) {
	eng := &stubEngine{err: pkgerrors.New(pkgerrors.CodeConflict, "a newer bid was accepted first").
		WithReason(pkgerrors.ReasonStaleBid)}
	handler := SubmitBid(eng, nil)

	req := bidRequest(t, uuid.New(), uuid.New(), 100, uuid.New().String(), uuid.New().String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}

	var envelope struct {
		Error struct {
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Reason != string(pkgerrors.ReasonStaleBid) {
		t.Fatalf("expected stale bid reason got %q", envelope.Error.Reason)
	}
}

func TestSubmitBidZeroAmountRejected(t *testing.T) {
	handler := SubmitBid(&stubEngine{}, nil)

	req := bidRequest(t, uuid.New(), uuid.New(), 0, uuid.New().String(), uuid.New().String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListItemBidsSuccess(t *testing.T) {
	eventID := uuid.New()
	itemID := uuid.New()
	svc := &stubBiddingService{bids: []models.Bid{
		{ID: uuid.New(), Amount: 110, IsWinningBid: true},
		{ID: uuid.New(), Amount: 100},
	}}
	handler := ListItemBids(svc, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/auctions/"+eventID.String()+"/items/"+itemID.String()+"/bids", nil)
	req = withURLParams(req, map[string]string{
		"auctionID": eventID.String(),
		"itemID":    itemID.String(),
	})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data []models.Bid `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 bids got %d", len(envelope.Data))
	}
}

func TestGetWinningBidNotFound(t *testing.T) {
	handler := GetWinningBid(&stubBiddingService{}, nil)

	eventID := uuid.New()
	itemID := uuid.New()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/auctions/"+eventID.String()+"/items/"+itemID.String()+"/bids/winning", nil)
	req = withURLParams(req, map[string]string{
		"auctionID": eventID.String(),
		"itemID":    itemID.String(),
	})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
