package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	Register(reg) // second call must not panic on duplicate registration

	ObserveTransportRead()
	ObserveFrameReassembled()
	ObserveIntegrityFailure("checksum")
	ObserveSettingsRequest("ok")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected gathered metric families")
	}
}
