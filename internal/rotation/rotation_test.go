package rotation

import (
	"testing"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/pkg/db/models"
	"github.com/auctionhub/auctionhub-backend/pkg/enums"
)

func makeItem(name string, category enums.ItemCategory, basePrice int64) models.Item {
	return models.Item{
		ID:        uuid.New(),
		Name:      name,
		Category:  category,
		BasePrice: basePrice,
		Status:    enums.ItemStatusAvailable,
	}
}

func TestNextItemPicksCheapestInCurrentCategory(t *testing.T) {
	items := []models.Item{
		makeItem("expensive batsman", enums.ItemCategoryBatsman, 200),
		makeItem("cheap batsman", enums.ItemCategoryBatsman, 50),
		makeItem("cheap bowler", enums.ItemCategoryBowler, 10),
	}

	item, category, ok := NextItem(items, nil, enums.ItemCategoryBatsman)
	if !ok {
		t.Fatal("expected an item")
	}
	if item.Name != "cheap batsman" {
		t.Fatalf("expected cheapest batsman, got %s", item.Name)
	}
	if category != enums.ItemCategoryBatsman {
		t.Fatalf("expected category to stay batsman, got %s", category)
	}
}

func TestNextItemAdvancesToNextCategoryWhenExhausted(t *testing.T) {
	won := makeItem("won batsman", enums.ItemCategoryBatsman, 50)
	bowler := makeItem("bowler", enums.ItemCategoryBowler, 80)
	items := []models.Item{won, bowler}

	wonIDs := map[uuid.UUID]bool{won.ID: true}

	item, category, ok := NextItem(items, wonIDs, enums.ItemCategoryBatsman)
	if !ok {
		t.Fatal("expected an item")
	}
	if item.ID != bowler.ID {
		t.Fatalf("expected the bowler, got %s", item.Name)
	}
	if category != enums.ItemCategoryBowler {
		t.Fatalf("expected category bowler, got %s", category)
	}
}

func TestNextItemWrapsAroundTheCycle(t *testing.T) {
	batsman := makeItem("late batsman", enums.ItemCategoryBatsman, 90)
	items := []models.Item{batsman}

	// Starting from all_rounder, the cycle wraps back to batsman.
	item, category, ok := NextItem(items, nil, enums.ItemCategoryAllRounder)
	if !ok {
		t.Fatal("expected an item")
	}
	if item.ID != batsman.ID {
		t.Fatalf("expected the batsman, got %s", item.Name)
	}
	if category != enums.ItemCategoryBatsman {
		t.Fatalf("expected category batsman, got %s", category)
	}
}

func TestNextItemExhaustion(t *testing.T) {
	a := makeItem("a", enums.ItemCategoryBatsman, 50)
	b := makeItem("b", enums.ItemCategoryBowler, 60)
	items := []models.Item{a, b}

	wonIDs := map[uuid.UUID]bool{a.ID: true, b.ID: true}

	if _, _, ok := NextItem(items, wonIDs, enums.ItemCategoryBatsman); ok {
		t.Fatal("expected exhaustion when every item is won")
	}
}

func TestNextItemSkipsUnsoldAndRetired(t *testing.T) {
	unsold := makeItem("unsold", enums.ItemCategoryBatsman, 10)
	unsold.Status = enums.ItemStatusUnsold
	retired := makeItem("retired", enums.ItemCategoryBatsman, 20)
	retired.Status = enums.ItemStatusRetired
	available := makeItem("available", enums.ItemCategoryBatsman, 30)
	items := []models.Item{unsold, retired, available}

	item, _, ok := NextItem(items, nil, enums.ItemCategoryBatsman)
	if !ok {
		t.Fatal("expected an item")
	}
	if item.ID != available.ID {
		t.Fatalf("expected the available item, got %s", item.Name)
	}
}

func TestNextItemNoBidItemStaysEligible(t *testing.T) {
	// An item that expired with no bids carries no winning bid and no status
	// change, so a later pass over its category offers it again.
	noBids := makeItem("no bids yet", enums.ItemCategoryBowler, 40)
	items := []models.Item{noBids}

	item, _, ok := NextItem(items, map[uuid.UUID]bool{}, enums.ItemCategoryBowler)
	if !ok {
		t.Fatal("expected an item")
	}
	if item.ID != noBids.ID {
		t.Fatalf("expected the no-bid item, got %s", item.Name)
	}
}

func TestNextItemTieBreaksByName(t *testing.T) {
	b := makeItem("beta", enums.ItemCategoryBatsman, 50)
	a := makeItem("alpha", enums.ItemCategoryBatsman, 50)
	items := []models.Item{b, a}

	item, _, ok := NextItem(items, nil, enums.ItemCategoryBatsman)
	if !ok {
		t.Fatal("expected an item")
	}
	if item.ID != a.ID {
		t.Fatalf("expected alphabetical tie-break, got %s", item.Name)
	}
}
