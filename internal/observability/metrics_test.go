package observability

import (
	"context"
	"testing"
	"time"

	"github.com/danmuck/adbtrace/internal/decoder"
	"github.com/danmuck/adbtrace/internal/protocol"
	"github.com/danmuck/adbtrace/internal/testutil/adbwave"
	"github.com/danmuck/adbtrace/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("adbtrace-a", "GET", "/health", 200, 12*time.Millisecond)
	RecordCapture("test", ResultOK, 1000, 3*time.Millisecond)

	testlog.Logf("observability/metrics: registration idempotent and recording paths executed")
}

func TestDecodeMetricsCountsDecoderEvents(t *testing.T) {
	testlog.Start(t)
	const source = "metrics-test"
	m := NewDecodeMetrics(source)

	talk := decodeTransactions.WithLabelValues(source, protocol.CommandTalk.String(), "true", "false")
	data := decodeAnnotations.WithLabelValues(source, protocol.CategoryData.String())
	syncWidth := decodeRecoveries.WithLabelValues(source, decoder.StateSync.String(), decoder.ReasonSyncWidth.String())
	beforeTalk := testutil.ToFloat64(talk)
	beforeData := testutil.ToFloat64(data)
	beforeSync := testutil.ToFloat64(syncWidth)

	w := adbwave.New(2_000_000).
		Transaction(0x3, 3, 0x0, 0xbeef).
		Attention(800, 70).Low(50).High(100)
	res, err := decoder.Run(context.Background(),
		decoder.Config{Samplerate: w.Samplerate()}, w.Reader(), decoder.WithRecorder(m))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("expected one transaction, got %d", len(res.Transactions))
	}

	if got := testutil.ToFloat64(talk) - beforeTalk; got != 1 {
		t.Fatalf("talk transactions delta: got %v", got)
	}
	if got := testutil.ToFloat64(data) - beforeData; got != 1 {
		t.Fatalf("data annotations delta: got %v", got)
	}
	if got := testutil.ToFloat64(syncWidth) - beforeSync; got != 1 {
		t.Fatalf("sync recoveries delta: got %v", got)
	}
}

func TestDecodeMetricsKeepSourcesApart(t *testing.T) {
	testlog.Start(t)
	a := NewDecodeMetrics("source-a")
	other := decodeAnnotations.WithLabelValues("source-b", protocol.CategorySync.String())
	before := testutil.ToFloat64(other)

	a.Annotated(protocol.Annotation{Category: protocol.CategorySync})
	a.Recovered(decoder.Recovery{State: decoder.StateSync, Reason: decoder.ReasonSyncWidth})

	if got := testutil.ToFloat64(decodeAnnotations.WithLabelValues("source-a", protocol.CategorySync.String())); got != 1 {
		t.Fatalf("source-a sync annotations: got %v", got)
	}
	if got := testutil.ToFloat64(other); got != before {
		t.Fatalf("source-b moved from %v to %v", before, got)
	}
}
