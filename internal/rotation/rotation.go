package rotation

import (
	"sort"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/enums"
)

// NextItem selects the item that should be offered next. It walks the fixed
// category cycle starting at current, picks the cheapest item of that
// category that has not been won yet, and moves to the next category when the
// current one is exhausted. Returns false after a full cycle yields nothing,
// which means the auction has run out of items to offer.
//
// Items with a winning bid, and items retired globally, never come back; an
// item that simply received no bids stays eligible because exhaustion is
// computed from wonItemIDs on every call, not from a consumed flag.
func NextItem(items []models.Item, wonItemIDs map[uuid.UUID]bool, current enums.ItemCategory) (*models.Item, enums.ItemCategory, bool) {
	if !current.IsValid() {
		current = enums.CategoryRotation[0]
	}

	category := current
	for range enums.CategoryRotation {
		if item := cheapestEligible(items, wonItemIDs, category); item != nil {
			return item, category, true
		}
		category = category.Next()
	}
	return nil, current, false
}

func cheapestEligible(items []models.Item, wonItemIDs map[uuid.UUID]bool, category enums.ItemCategory) *models.Item {
	var eligible []models.Item
	for _, item := range items {
		if item.Category != category {
			continue
		}
		if item.Status == enums.ItemStatusRetired || item.Status == enums.ItemStatusUnsold {
			continue
		}
		if wonItemIDs[item.ID] {
			continue
		}
		eligible = append(eligible, item)
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].BasePrice != eligible[j].BasePrice {
			return eligible[i].BasePrice < eligible[j].BasePrice
		}
		return eligible[i].Name < eligible[j].Name
	})
	return &eligible[0]
}
