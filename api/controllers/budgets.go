package controllers

import (
	"net/http"

	"github.com/auctionhub/auctionhub-backend/api/responses"
	"github.com/auctionhub/auctionhub-backend/internal/budget"
	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/logger"
)

type budgetView struct {
	PartyID   string `json:"party_id"`
	Allocated int64  `json:"allocated"`
	Spent     int64  `json:"spent"`
	Remaining int64  `json:"remaining"`
}

func toBudgetView(b *models.EventBudget) budgetView {
	return budgetView{
		PartyID:   b.PartyID.String(),
		Allocated: b.Allocated,
		Spent:     b.Spent,
		Remaining: b.Remaining(),
	}
}

// ListEventBudgets returns every party balance in the event.
func ListEventBudgets(svc budget.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		budgets, err := svc.ListByEvent(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]budgetView, 0, len(budgets))
		for i := range budgets {
			views = append(views, toBudgetView(&budgets[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// MyBudget returns the calling party's balance for the event.
func MyBudget(svc budget.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partyID, err := partyFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Get(r.Context(), partyID, auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toBudgetView(balance))
	}
}
