package ship

import (
	"testing"

	"github.com/example/shiptracker/internal/apperr"
)

func TestCanCreateShip(t *testing.T) {
	tests := []struct {
		name        string
		ctx         CreateShipContext
		wantAllowed bool
		wantCode    apperr.Code
	}{
		{
			name:        "can create ship in open war",
			ctx:         CreateShipContext{GuildID: 7, WarID: 1, Name: "Alpha", WarExists: true},
			wantAllowed: true,
		},
		{
			name:     "cannot create ship in unknown war",
			ctx:      CreateShipContext{GuildID: 7, WarID: 9, Name: "Alpha"},
			wantCode: apperr.NotFound,
		},
		{
			name:     "cannot create ship in ended war",
			ctx:      CreateShipContext{GuildID: 7, WarID: 1, Name: "Alpha", WarExists: true, WarEnded: true},
			wantCode: apperr.Validation,
		},
		{
			name:     "cannot reuse name in same scope",
			ctx:      CreateShipContext{GuildID: 7, WarID: 1, Name: "Alpha", WarExists: true, NameTaken: true},
			wantCode: apperr.DuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanCreateShip(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", result.Code, tt.wantCode)
			}
		})
	}
}

func TestCanDeleteShip(t *testing.T) {
	result := CanDeleteShip(3)
	if result.Allowed {
		t.Fatal("expected delete to be denied")
	}
	if !apperr.IsCode(result.Error(), apperr.OperationForbidden) {
		t.Errorf("expected OperationForbidden, got %v", result.Error())
	}
}

func TestCanLinkShip(t *testing.T) {
	tests := []struct {
		name        string
		ctx         LinkShipContext
		wantAllowed bool
		wantCode    apperr.Code
	}{
		{"links to existing root", LinkShipContext{ShipID: 2, RootID: 1, RootExists: true}, true, ""},
		{"self link", LinkShipContext{ShipID: 1, RootID: 1, RootExists: true}, false, apperr.Validation},
		{"missing root", LinkShipContext{ShipID: 2, RootID: 9}, false, apperr.NotFound},
		{"already linked", LinkShipContext{ShipID: 2, RootID: 1, RootExists: true, AlreadyLinked: true}, false, apperr.Validation},
		{"root of a group", LinkShipContext{ShipID: 2, RootID: 1, RootExists: true, HasCopies: true}, false, apperr.Validation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanLinkShip(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", result.Code, tt.wantCode)
			}
		})
	}
}

func TestCanAdjustSupply(t *testing.T) {
	next, result := CanAdjustSupply(SupplyContext{ShipID: 1, Resource: "shells", Current: 10, Delta: -4})
	if !result.Allowed || next != 6 {
		t.Errorf("expected 6 allowed, got %d %+v", next, result)
	}

	_, result = CanAdjustSupply(SupplyContext{ShipID: 1, Resource: "shells", Current: 3, Delta: -4})
	if result.Allowed || result.Code != apperr.Validation {
		t.Errorf("expected negative result to be rejected, got %+v", result)
	}

	_, result = CanAdjustSupply(SupplyContext{ShipID: 1, Delta: 1})
	if result.Allowed {
		t.Error("expected empty resource to be rejected")
	}
}
