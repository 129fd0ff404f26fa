package enums

// BidStatus tracks the lifecycle of a bid within an auction event.
type BidStatus string

const (
	// BidStatusWinning marks the single currently-leading bid for an item.
	BidStatusWinning BidStatus = "winning"
	// BidStatusOutbid marks a previously-winning bid that was superseded.
	BidStatusOutbid BidStatus = "outbid"
	// BidStatusAccepted marks a bid that cleared arbitration but is no longer leading.
	BidStatusAccepted BidStatus = "accepted"
	// BidStatusRejected marks a bid refused by arbitration.
	BidStatusRejected BidStatus = "rejected"
)

// IsValid reports whether the status is a known bid status.
func (s BidStatus) IsValid() bool {
	switch s {
	case BidStatusWinning, BidStatusOutbid, BidStatusAccepted, BidStatusRejected:
		return true
	}
	return false
}
