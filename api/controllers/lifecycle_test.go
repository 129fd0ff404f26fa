package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/api/middleware"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/enums"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
)

func lifecycleRequest(eventID uuid.UUID, action string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auctions/"+eventID.String()+"/"+action, nil)
	req = withURLParams(req, map[string]string{"auctionID": eventID.String()})
	return req.WithContext(middleware.WithActorID(req.Context(), uuid.New().String()))
}

func TestStartAuctionSuccess(t *testing.T) {
	eventID := uuid.New()
	eng := &stubEngine{event: &models.AuctionEvent{ID: eventID, Status: enums.AuctionStatusLive}}
	handler := StartAuction(eng, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, lifecycleRequest(eventID, "start"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if eng.lastAction != "start" {
		t.Fatalf("expected start forwarded got %q", eng.lastAction)
	}
}

func TestStartAuctionMissingActor(t *testing.T) {
	eventID := uuid.New()
	handler := StartAuction(&stubEngine{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auctions/"+eventID.String()+"/start", nil)
	req = withURLParams(req, map[string]string{"auctionID": eventID.String()})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestPauseAuctionInvalidTransition(t *testing.T) {
	eventID := uuid.New()
	eng := &stubEngine{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot pause a draft auction").
		WithReason(pkgerrors.ReasonInvalidTransition)}
	handler := PauseAuction(eng, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, lifecycleRequest(eventID, "pause"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestStartItemForwardsBothIDs(t *testing.T) {
	eventID := uuid.New()
	itemID := uuid.New()
	eng := &stubEngine{event: &models.AuctionEvent{ID: eventID, Status: enums.AuctionStatusLive, CurrentItemID: &itemID}}
	handler := StartItem(eng, nil)

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/auctions/"+eventID.String()+"/items/"+itemID.String()+"/start", nil)
	req = withURLParams(req, map[string]string{
		"auctionID": eventID.String(),
		"itemID":    itemID.String(),
	})
	req = req.WithContext(middleware.WithActorID(req.Context(), uuid.New().String()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if eng.lastAction != "start_item" {
		t.Fatalf("expected start_item forwarded got %q", eng.lastAction)
	}
}

func TestFinalizeSoldBadItemID(t *testing.T) {
	eventID := uuid.New()
	handler := FinalizeSold(&stubEngine{}, nil)

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/auctions/"+eventID.String()+"/items/oops/sold", nil)
	req = withURLParams(req, map[string]string{
		"auctionID": eventID.String(),
		"itemID":    "oops",
	})
	req = req.WithContext(middleware.WithActorID(req.Context(), uuid.New().String()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUpdateAuctionSettingsSuccess(t *testing.T) {
	eventID := uuid.New()
	eng := &stubEngine{event: &models.AuctionEvent{ID: eventID, Status: enums.AuctionStatusDraft}}
	handler := UpdateAuctionSettings(eng, nil)

	payload := []byte(`{"timer_window_seconds": 30, "auto_mode": false}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/auctions/"+eventID.String()+"/settings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParams(req, map[string]string{"auctionID": eventID.String()})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if eng.lastAction != "update_settings" {
		t.Fatalf("expected update_settings forwarded got %q", eng.lastAction)
	}
}
