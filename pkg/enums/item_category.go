package enums

// ItemCategory groups auction items for rotation purposes.
type ItemCategory string

const (
	ItemCategoryBatsman    ItemCategory = "batsman"
	ItemCategoryBowler     ItemCategory = "bowler"
	ItemCategoryAllRounder ItemCategory = "all_rounder"
)

// CategoryRotation is the fixed cyclic order in which categories are offered.
var CategoryRotation = []ItemCategory{
	ItemCategoryBatsman,
	ItemCategoryBowler,
	ItemCategoryAllRounder,
}

// IsValid reports whether the category is part of the fixed set.
func (c ItemCategory) IsValid() bool {
	switch c {
	case ItemCategoryBatsman, ItemCategoryBowler, ItemCategoryAllRounder:
		return true
	}
	return false
}

// Next returns the category that follows c in the rotation cycle.
func (c ItemCategory) Next() ItemCategory {
	for i, cat := range CategoryRotation {
		if cat == c {
			return CategoryRotation[(i+1)%len(CategoryRotation)]
		}
	}
	return CategoryRotation[0]
}
