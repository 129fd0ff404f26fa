package enums

// AuctionStatus tracks the lifecycle of an auction event.
type AuctionStatus string

const (
	AuctionStatusDraft     AuctionStatus = "draft"
	AuctionStatusScheduled AuctionStatus = "scheduled"
	AuctionStatusLive      AuctionStatus = "live"
	AuctionStatusPaused    AuctionStatus = "paused"
	AuctionStatusCompleted AuctionStatus = "completed"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// IsValid reports whether the status is a known auction status.
func (s AuctionStatus) IsValid() bool {
	switch s {
	case AuctionStatusDraft, AuctionStatusScheduled, AuctionStatusLive,
		AuctionStatusPaused, AuctionStatusCompleted, AuctionStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the auction can no longer transition.
func (s AuctionStatus) IsTerminal() bool {
	return s == AuctionStatusCompleted || s == AuctionStatusCancelled
}
