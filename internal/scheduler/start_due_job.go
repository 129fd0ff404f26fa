package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	pkgerrors "github.com/auctionhub/auctionhub-backend/pkg/errors"
	"github.com/auctionhub/auctionhub-backend/pkg/logger"
)

type dueFinder interface {
	FindDueScheduled(ctx context.Context, now time.Time) ([]models.AuctionEvent, error)
}

type auctionStarter interface {
	Start(ctx context.Context, eventID, actorID uuid.UUID) (*models.AuctionEvent, error)
}

// StartDueAuctionsJobParams configure the scheduled-start job.
type StartDueAuctionsJobParams struct {
	Logger  *logger.Logger
	Finder  dueFinder
	Starter auctionStarter
}

// NewStartDueAuctionsJob builds the job that flips scheduled auctions live
// once their start time passes.
func NewStartDueAuctionsJob(params StartDueAuctionsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Finder == nil {
		return nil, fmt.Errorf("due finder required")
	}
	if params.Starter == nil {
		return nil, fmt.Errorf("auction starter required")
	}
	return &startDueAuctionsJob{
		logg:    params.Logger,
		finder:  params.Finder,
		starter: params.Starter,
		now:     time.Now,
	}, nil
}

type startDueAuctionsJob struct {
	logg    *logger.Logger
	finder  dueFinder
	starter auctionStarter
	now     func() time.Time
}

func (j *startDueAuctionsJob) Name() string { return "start-due-auctions" }

func (j *startDueAuctionsJob) Run(ctx context.Context) error {
	due, err := j.finder.FindDueScheduled(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("query due auctions: %w", err)
	}

	var errs []error
	started := 0
	for _, event := range due {
		eventCtx := j.logg.WithField(ctx, "auction_id", event.ID.String())
		if _, err := j.starter.Start(ctx, event.ID, uuid.Nil); err != nil {
			// Another instance may have won the race; that is not a failure.
			if pkgerrors.HasReason(err, pkgerrors.ReasonInvalidTransition) {
				j.logg.Info(eventCtx, "auction already transitioned, skipping")
				continue
			}
			errs = append(errs, fmt.Errorf("start auction %s: %w", event.ID, err))
			continue
		}
		started++
		j.logg.Info(eventCtx, "scheduled auction started")
	}

	if started > 0 || len(errs) > 0 {
		summaryCtx := j.logg.WithFields(ctx, map[string]any{
			"due":     len(due),
			"started": started,
			"failed":  len(errs),
		})
		j.logg.Info(summaryCtx, "scheduled start sweep complete")
	}
	return multierr.Combine(errs...)
}
