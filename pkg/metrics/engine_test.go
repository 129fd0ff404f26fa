package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestEngineMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg)

	m.IncBidAccepted("evt-1")
	m.IncBidAccepted("evt-1")
	m.IncBidRejected("evt-1", "stale_bid")
	m.IncBidRejected("evt-1", "")
	m.TimerArmed(1)
	m.ObserveCommand("submit_bid", 5*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	if got := counterValue(t, families, "auction_bids_accepted_total", "evt-1"); got != 2 {
		t.Fatalf("expected 2 accepted bids, got %v", got)
	}
	if got := counterValue(t, families, "auction_bids_rejected_total", "stale_bid"); got != 1 {
		t.Fatalf("expected 1 stale rejection, got %v", got)
	}
	if got := counterValue(t, families, "auction_bids_rejected_total", "unknown"); got != 1 {
		t.Fatalf("expected empty reason normalized to unknown, got %v", got)
	}
}

func TestEngineMetricsNilSafe(t *testing.T) {
	var m *EngineMetrics
	m.IncBidAccepted("evt")
	m.TimerArmed(1)

	empty := NewEngineMetrics(nil)
	empty.IncItemSold("evt")
}

func counterValue(t *testing.T, families []*dto.MetricFamily, name, labelValue string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			for _, label := range metric.GetLabel() {
				if strings.EqualFold(label.GetValue(), labelValue) {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
