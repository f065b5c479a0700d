package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/example/shiptracker/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

// mockShipService implements primary.ShipService for testing
type mockShipService struct {
	createShipFn      func(ctx context.Context, req primary.CreateShipRequest) (*primary.ShipResult, error)
	getShipFn         func(ctx context.Context, shipID int64) (*primary.Ship, error)
	listShipsFn       func(ctx context.Context, filters primary.ShipFilters) ([]*primary.Ship, error)
	updateShipFieldFn func(ctx context.Context, req primary.UpdateShipFieldRequest) (*primary.ShipResult, error)
	departFn          func(ctx context.Context, shipID int64) (*primary.ShipResult, error)
	listSuppliesFn    func(ctx context.Context, shipID int64) ([]*primary.Supply, error)
	adjustSupplyFn    func(ctx context.Context, req primary.AdjustSupplyRequest) (*primary.SupplyResult, error)

	// Track calls for verification
	lastUpdateReq primary.UpdateShipFieldRequest
	lastEditReq   primary.EditShipFieldsRequest
}

func testShip(id int64, name, status string) *primary.Ship {
	return &primary.Ship{ID: id, GuildID: 7, WarID: 1, Name: name, Status: status, UpdatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *mockShipService) result(id int64) *primary.ShipResult {
	s := testShip(id, "Alpha", "Parked")
	return &primary.ShipResult{Ship: s, Changed: []*primary.Ship{s}, Fanout: []*primary.Instance{}}
}

func (m *mockShipService) CreateShip(ctx context.Context, req primary.CreateShipRequest) (*primary.ShipResult, error) {
	if m.createShipFn != nil {
		return m.createShipFn(ctx, req)
	}
	s := testShip(1, req.Name, "Parked")
	return &primary.ShipResult{Ship: s, Changed: []*primary.Ship{s}}, nil
}

func (m *mockShipService) GetShip(ctx context.Context, shipID int64) (*primary.Ship, error) {
	if m.getShipFn != nil {
		return m.getShipFn(ctx, shipID)
	}
	return testShip(shipID, "Alpha", "Parked"), nil
}

func (m *mockShipService) GetShipByName(ctx context.Context, guildID, warID int64, name string) (*primary.Ship, error) {
	return nil, errors.New("not implemented in mock")
}

func (m *mockShipService) ListShips(ctx context.Context, filters primary.ShipFilters) ([]*primary.Ship, error) {
	if m.listShipsFn != nil {
		return m.listShipsFn(ctx, filters)
	}
	return []*primary.Ship{}, nil
}

func (m *mockShipService) UpdateShipField(ctx context.Context, req primary.UpdateShipFieldRequest) (*primary.ShipResult, error) {
	m.lastUpdateReq = req
	if m.updateShipFieldFn != nil {
		return m.updateShipFieldFn(ctx, req)
	}
	return m.result(req.ShipID), nil
}

func (m *mockShipService) EditShipFields(ctx context.Context, req primary.EditShipFieldsRequest) (*primary.ShipResult, error) {
	m.lastEditReq = req
	return m.result(req.ShipID), nil
}

func (m *mockShipService) StartRepairs(ctx context.Context, shipID int64, drydock string) (*primary.ShipResult, error) {
	return m.result(shipID), nil
}

func (m *mockShipService) FinishRepairs(ctx context.Context, shipID int64, parkedAt, notes string) (*primary.ShipResult, error) {
	return m.result(shipID), nil
}

func (m *mockShipService) Depart(ctx context.Context, shipID int64) (*primary.ShipResult, error) {
	if m.departFn != nil {
		return m.departFn(ctx, shipID)
	}
	return m.result(shipID), nil
}

func (m *mockShipService) ReturnToPort(ctx context.Context, req primary.ReturnToPortRequest) (*primary.ShipResult, error) {
	return m.result(req.ShipID), nil
}

func (m *mockShipService) MarkDead(ctx context.Context, shipID int64) (*primary.ShipResult, error) {
	return m.result(shipID), nil
}

func (m *mockShipService) LockSquad(ctx context.Context, shipID int64, d time.Duration) (*primary.ShipResult, error) {
	return m.result(shipID), nil
}

func (m *mockShipService) ClearSquadLock(ctx context.Context, shipID int64) (*primary.ShipResult, error) {
	return m.result(shipID), nil
}

func (m *mockShipService) LinkShip(ctx context.Context, shipID, rootID int64) (*primary.ShipResult, error) {
	return m.result(shipID), nil
}

func (m *mockShipService) DeleteShip(ctx context.Context, shipID int64) error {
	return errors.New("ships are archive-only")
}

func (m *mockShipService) AdjustSupply(ctx context.Context, req primary.AdjustSupplyRequest) (*primary.SupplyResult, error) {
	if m.adjustSupplyFn != nil {
		return m.adjustSupplyFn(ctx, req)
	}
	return &primary.SupplyResult{Supply: &primary.Supply{ShipID: req.ShipID, Resource: req.Resource, Quantity: req.Delta}}, nil
}

func (m *mockShipService) SetSupply(ctx context.Context, req primary.SetSupplyRequest) (*primary.SupplyResult, error) {
	return &primary.SupplyResult{Supply: &primary.Supply{ShipID: req.ShipID, Resource: req.Resource, Quantity: req.Quantity}}, nil
}

func (m *mockShipService) ListSupplies(ctx context.Context, shipID int64) ([]*primary.Supply, error) {
	if m.listSuppliesFn != nil {
		return m.listSuppliesFn(ctx, shipID)
	}
	return nil, nil
}

func (m *mockShipService) GenerateShareCode(ctx context.Context, shipID int64) (*primary.ShareCodeResult, error) {
	return &primary.ShareCodeResult{Code: "ABCD2345", Ship: testShip(shipID, "Alpha", "Parked")}, nil
}

func (m *mockShipService) RedeemShareCode(ctx context.Context, req primary.RedeemShareCodeRequest) (*primary.RedeemShareCodeResult, error) {
	return &primary.RedeemShareCodeResult{
		Ship:     testShip(3, "Alpha", "Parked"),
		Instance: &primary.Instance{ID: 9, ShipID: 3, GuildID: req.GuildID, ChannelID: req.ChannelID, MessageID: req.MessageID},
	}, nil
}

// ============================================================================
// List Tests
// ============================================================================

func TestShipAdapter_List_WithResults(t *testing.T) {
	mock := &mockShipService{
		listShipsFn: func(ctx context.Context, filters primary.ShipFilters) ([]*primary.Ship, error) {
			locked := testShip(2, "Bravo", "Deployed")
			locked.SquadLocked = true
			locked.SquadLockUntil = time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC).Unix()
			return []*primary.Ship{testShip(1, "Alpha", "Parked"), locked}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewShipAdapter(mock, &buf)

	ships, err := adapter.List(context.Background(), primary.ShipFilters{GuildID: 7})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ships) != 2 {
		t.Errorf("expected 2 ships, got %d", len(ships))
	}
	output := buf.String()
	for _, want := range []string{"NAME", "Alpha", "Bravo", "Deployed", "locked until", "open"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got '%s'", want, output)
		}
	}
}

func TestShipAdapter_List_Empty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewShipAdapter(&mockShipService{}, &buf)

	if _, err := adapter.List(context.Background(), primary.ShipFilters{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No ships found") {
		t.Errorf("expected empty-state hint, got '%s'", buf.String())
	}
}

func TestShipAdapter_List_Error(t *testing.T) {
	mock := &mockShipService{
		listShipsFn: func(ctx context.Context, filters primary.ShipFilters) ([]*primary.Ship, error) {
			return nil, errors.New("store unavailable")
		},
	}
	var buf bytes.Buffer
	adapter := NewShipAdapter(mock, &buf)

	_, err := adapter.List(context.Background(), primary.ShipFilters{})
	if err == nil || !strings.Contains(err.Error(), "failed to list ships") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

// ============================================================================
// Show Tests
// ============================================================================

func TestShipAdapter_Show(t *testing.T) {
	mock := &mockShipService{
		listSuppliesFn: func(ctx context.Context, shipID int64) ([]*primary.Supply, error) {
			return []*primary.Supply{{ShipID: shipID, Resource: "shells", Quantity: 12}}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewShipAdapter(mock, &buf)

	if _, err := adapter.Show(context.Background(), 4); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	for _, want := range []string{"Ship 4: Alpha", "Status:    Parked", "shells", "12"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got '%s'", want, output)
		}
	}
}

// ============================================================================
// Mutation Tests
// ============================================================================

func TestShipAdapter_Update(t *testing.T) {
	mock := &mockShipService{}
	var buf bytes.Buffer
	adapter := NewShipAdapter(mock, &buf)

	_, err := adapter.Update(context.Background(), 4, "location", "Kingsport")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastUpdateReq.ShipID != 4 || mock.lastUpdateReq.Field != "location" || mock.lastUpdateReq.Value != "Kingsport" {
		t.Errorf("unexpected request: %+v", mock.lastUpdateReq)
	}
	if !strings.Contains(buf.String(), "✓ Set location") {
		t.Errorf("expected success message, got '%s'", buf.String())
	}
}

func TestShipAdapter_Update_PrintsFanout(t *testing.T) {
	mock := &mockShipService{
		updateShipFieldFn: func(ctx context.Context, req primary.UpdateShipFieldRequest) (*primary.ShipResult, error) {
			a, b := testShip(1, "Alpha", "Parked"), testShip(2, "Alpha", "Parked")
			return &primary.ShipResult{
				Ship:    a,
				Changed: []*primary.Ship{a, b},
				Fanout:  []*primary.Instance{{GuildID: 7, ChannelID: 100, MessageID: 1000}, {GuildID: 8, ChannelID: 200, MessageID: 2000}},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewShipAdapter(mock, &buf)

	if _, err := adapter.Update(context.Background(), 1, "notes", "x"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "propagated to 1 linked ship") {
		t.Errorf("expected propagation note, got '%s'", output)
	}
	if strings.Count(output, "refresh:") != 2 {
		t.Errorf("expected two refresh lines, got '%s'", output)
	}
}

func TestShipAdapter_Edit(t *testing.T) {
	mock := &mockShipService{}
	var buf bytes.Buffer
	adapter := NewShipAdapter(mock, &buf)

	changes := []primary.FieldChange{{Field: "type", Value: "Frigate"}, {Field: "damage", Value: "2"}}
	if _, err := adapter.Edit(context.Background(), 3, changes); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mock.lastEditReq.Changes) != 2 {
		t.Errorf("expected both changes to be sent, got %+v", mock.lastEditReq)
	}
	if !strings.Contains(buf.String(), "Updated 2 field(s)") {
		t.Errorf("expected success message, got '%s'", buf.String())
	}
}

func TestShipAdapter_Depart_Error(t *testing.T) {
	mock := &mockShipService{
		departFn: func(ctx context.Context, shipID int64) (*primary.ShipResult, error) {
			return nil, errors.New("squad locked")
		},
	}
	var buf bytes.Buffer
	adapter := NewShipAdapter(mock, &buf)

	if _, err := adapter.Depart(context.Background(), 1); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on failure, got '%s'", buf.String())
	}
}

func TestShipAdapter_AdjustSupply(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewShipAdapter(&mockShipService{}, &buf)

	if _, err := adapter.AdjustSupply(context.Background(), primary.AdjustSupplyRequest{ShipID: 1, Resource: "shells", Delta: 5}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "shells +5 → 5") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestShipAdapter_ShareAndRedeem(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewShipAdapter(&mockShipService{}, &buf)

	if _, err := adapter.Share(context.Background(), 3); err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if _, err := adapter.Redeem(context.Background(), primary.RedeemShareCodeRequest{Code: "ABCD2345", GuildID: 8, ChannelID: 1, MessageID: 2}); err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "ABCD2345") || !strings.Contains(output, "into guild 8") {
		t.Errorf("unexpected output '%s'", output)
	}
}

func TestStatusLabel_UnknownPassesThrough(t *testing.T) {
	if got := StatusLabel("Sunk?"); got != "Sunk?" {
		t.Errorf("StatusLabel = %q", got)
	}
}
