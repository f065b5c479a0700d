package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/example/shiptracker/internal/ports/primary"
)

// mockHistoryService implements primary.HistoryService for testing
type mockHistoryService struct {
	listHistoryFn func(ctx context.Context, q primary.HistoryQuery) (*primary.HistoryPage, error)

	lastLogReq primary.LogActionRequest
}

func (m *mockHistoryService) RecordKill(ctx context.Context, shipID int64, text string) (*primary.HistoryEntry, error) {
	return &primary.HistoryEntry{ID: 1, Kind: "kill", ShipID: shipID, Text: text}, nil
}

func (m *mockHistoryService) RecordOp(ctx context.Context, shipID int64, text string) (*primary.HistoryEntry, error) {
	return &primary.HistoryEntry{ID: 2, Kind: "op", ShipID: shipID, Text: text}, nil
}

func (m *mockHistoryService) LogAction(ctx context.Context, req primary.LogActionRequest) (*primary.LogActionResult, error) {
	m.lastLogReq = req
	res := &primary.LogActionResult{}
	if req.Kills != "" {
		res.Kill, _ = m.RecordKill(ctx, req.ShipID, req.Kills)
	}
	if req.Debrief != "" {
		res.Op, _ = m.RecordOp(ctx, req.ShipID, req.Debrief)
	}
	return res, nil
}

func (m *mockHistoryService) ListHistory(ctx context.Context, q primary.HistoryQuery) (*primary.HistoryPage, error) {
	if m.listHistoryFn != nil {
		return m.listHistoryFn(ctx, q)
	}
	return &primary.HistoryPage{}, nil
}

func TestHistoryAdapter_Log(t *testing.T) {
	mock := &mockHistoryService{}
	var buf bytes.Buffer
	adapter := NewHistoryAdapter(mock, &buf)

	if _, err := adapter.Log(context.Background(), primary.LogActionRequest{ShipID: 4, Debrief: "escort run"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	if strings.Contains(output, "Kill report") {
		t.Errorf("expected no kill line, got '%s'", output)
	}
	if !strings.Contains(output, "✓ Debrief #2 logged for ship 4") {
		t.Errorf("expected debrief line, got '%s'", output)
	}
}

func TestHistoryAdapter_List_Updates(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock := &mockHistoryService{
		listHistoryFn: func(ctx context.Context, q primary.HistoryQuery) (*primary.HistoryPage, error) {
			return &primary.HistoryPage{
				Entries: []*primary.HistoryEntry{
					{ID: 9, Kind: "update", UserID: 42, Field: "location", OldValue: "", NewValue: "Kingsport", CreatedAt: at},
					{ID: 8, Kind: "supply", Resource: "shells", Delta: -3, QuantityAfter: 7, CreatedAt: at},
				},
				Next: "1740830400000000-8",
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewHistoryAdapter(mock, &buf)

	if _, err := adapter.List(context.Background(), primary.HistoryQuery{ShipID: 4}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	for _, want := range []string{`location: "" → "Kingsport"`, "shells -3 → 7", "system", "--cursor 1740830400000000-8"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got '%s'", want, output)
		}
	}
}

func TestHistoryAdapter_List_Empty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewHistoryAdapter(&mockHistoryService{}, &buf)

	if _, err := adapter.List(context.Background(), primary.HistoryQuery{ShipID: 4}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No history found") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}
