package bidding

import (
	"fmt"
	"sort"

	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
)

// NextValidAmount returns the minimum amount the next bid must reach given
// the current top amount (the base price when no bid exists yet). Returns
// false when no tier covers the amount or the step would push past cap,
// meaning bidding on this item has topped out.
func NextValidAmount(tiers []models.IncrementTier, current, cap int64) (int64, bool) {
	if current >= cap {
		return 0, false
	}
	for _, tier := range tiers {
		if current < tier.From {
			continue
		}
		if tier.To != nil && current >= *tier.To {
			continue
		}
		next := current + tier.Step
		if next > cap {
			return 0, false
		}
		return next, true
	}
	return 0, false
}

// TierCovers reports whether some tier band contains the amount.
func TierCovers(tiers []models.IncrementTier, amount int64) bool {
	for _, tier := range tiers {
		if amount >= tier.From && (tier.To == nil || amount < *tier.To) {
			return true
		}
	}
	return false
}

// ValidateTiers checks an increment table for use as event settings: at
// least one band, positive steps, ascending contiguous ranges. The final
// band may be bounded; amounts beyond it are treated as topped out.
func ValidateTiers(tiers []models.IncrementTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("at least one increment tier is required")
	}

	sorted := make([]models.IncrementTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })

	for i, tier := range sorted {
		if tier.Step <= 0 {
			return fmt.Errorf("tier %d: step must be positive, got %d", i, tier.Step)
		}
		if tier.To != nil && *tier.To <= tier.From {
			return fmt.Errorf("tier %d: upper bound %d must exceed lower bound %d", i, *tier.To, tier.From)
		}
		if i < len(sorted)-1 {
			if tier.To == nil {
				return fmt.Errorf("tier %d: only the final tier may be open-ended", i)
			}
			if *tier.To != sorted[i+1].From {
				return fmt.Errorf("tier %d: gap between %d and %d", i, *tier.To, sorted[i+1].From)
			}
		}
	}
	return nil
}
