package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("i4", "GET", "/health", 200, 12*time.Millisecond)

	beforeFrames := testutil.ToFloat64(frames.WithLabelValues(DirectionIn))
	beforeBytes := testutil.ToFloat64(frameBytes.WithLabelValues(DirectionIn))
	RecordFrame(DirectionIn, 42)
	if got := testutil.ToFloat64(frames.WithLabelValues(DirectionIn)) - beforeFrames; got != 1 {
		t.Fatalf("frames delta=%v", got)
	}
	if got := testutil.ToFloat64(frameBytes.WithLabelValues(DirectionIn)) - beforeBytes; got != 42 {
		t.Fatalf("bytes delta=%v", got)
	}

	before := testutil.ToFloat64(packets.WithLabelValues(DirectionOut, "startup-req-3"))
	RecordPacket(DirectionOut, "startup-req-3")
	if got := testutil.ToFloat64(packets.WithLabelValues(DirectionOut, "startup-req-3")) - before; got != 1 {
		t.Fatalf("packets delta=%v", got)
	}

	before = testutil.ToFloat64(codecErrors.WithLabelValues("syntax"))
	RecordCodecError("syntax")
	if got := testutil.ToFloat64(codecErrors.WithLabelValues("syntax")) - before; got != 1 {
		t.Fatalf("codec errors delta=%v", got)
	}
}
