package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/shiptracker/internal/telemetry"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// non-routable address, nothing is exported
	shutdown, err := telemetry.Setup(context.Background(), "http://192.0.2.1:4318")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, span := telemetry.Start(context.Background(), "test.op")
	telemetry.End(span, errors.New("boom"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// flushing to an unreachable collector may fail; shutdown must still return
	_ = shutdown(ctx)
}
