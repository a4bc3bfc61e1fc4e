package main

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherFamily(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() == name {
			return fam
		}
	}
	return nil
}

func TestNetworkTPSGauge(t *testing.T) {
	UpdateNetworkTPS(42)

	fam := gatherFamily(t, "aether_network_tps")
	if fam == nil {
		t.Fatal("expected aether_network_tps to be registered")
	}
	if got := fam.GetMetric()[0].GetGauge().GetValue(); got != 42 {
		t.Errorf("expected gauge value 42, got %v", got)
	}
}

func TestDisputeCounterLabels(t *testing.T) {
	RecordDisputeEvent("opened")
	RecordDisputeEvent("upheld")

	fam := gatherFamily(t, "aether_disputes_total")
	if fam == nil {
		t.Fatal("expected aether_disputes_total to be registered")
	}

	outcomes := make(map[string]float64)
	for _, m := range fam.GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == "outcome" {
				outcomes[label.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	if outcomes["opened"] < 1 {
		t.Errorf("expected opened counter >= 1, got %v", outcomes["opened"])
	}
	if outcomes["upheld"] < 1 {
		t.Errorf("expected upheld counter >= 1, got %v", outcomes["upheld"])
	}
}

func TestTransactionMetricsTrackVolume(t *testing.T) {
	before := 0.0
	if fam := gatherFamily(t, "aether_tokens_moved_total"); fam != nil {
		for _, m := range fam.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "type" && label.GetValue() == string(TxTypeTrustReward) {
					before = m.GetCounter().GetValue()
				}
			}
		}
	}

	RecordTransactionAppended(TxTypeTrustReward, 20)

	fam := gatherFamily(t, "aether_tokens_moved_total")
	if fam == nil {
		t.Fatal("expected aether_tokens_moved_total to be registered")
	}
	var after float64
	for _, m := range fam.GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == "type" && label.GetValue() == string(TxTypeTrustReward) {
				after = m.GetCounter().GetValue()
			}
		}
	}
	if after != before+20 {
		t.Errorf("expected volume to grow by 20, got %v -> %v", before, after)
	}
}

func TestOracleDurationHistogram(t *testing.T) {
	ObserveOracleCall("executeTask", 0.25, nil)
	ObserveOracleCall("executeTask", 0.5, ErrOracleUnavailable)

	fam := gatherFamily(t, "aether_oracle_request_duration_seconds")
	if fam == nil {
		t.Fatal("expected oracle duration histogram to be registered")
	}

	statuses := make(map[string]uint64)
	for _, m := range fam.GetMetric() {
		op, status := "", ""
		for _, label := range m.GetLabel() {
			switch label.GetName() {
			case "operation":
				op = label.GetValue()
			case "status":
				status = label.GetValue()
			}
		}
		if op == "executeTask" {
			statuses[status] = m.GetHistogram().GetSampleCount()
		}
	}
	if statuses["ok"] < 1 {
		t.Errorf("expected ok samples, got %v", statuses["ok"])
	}
	if statuses["error"] < 1 {
		t.Errorf("expected error samples, got %v", statuses["error"])
	}
}
