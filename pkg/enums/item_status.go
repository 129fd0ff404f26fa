package enums

// ItemStatus is the global availability of an item, independent of any
// single auction event. Per-event sold state is derived from winning bids.
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusUnsold    ItemStatus = "unsold"
	ItemStatusRetired   ItemStatus = "retired"
)

// IsValid reports whether the status is a known item status.
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusUnsold, ItemStatusRetired:
		return true
	}
	return false
}
