package ship

import "testing"

func TestLifecycleChangesNormalize(t *testing.T) {
	tests := []struct {
		name       string
		changes    []Change
		wantStatus Status
	}{
		{"start repairs", StartRepairs("Drydock 3"), StatusRepairing},
		{"finish repairs", FinishRepairs("Harbor", ""), StatusParked},
		{"depart", Depart(), StatusDeployed},
		{"return to port", ReturnToPort("Harbor", "2", "light fire"), StatusParked},
		{"mark dead", MarkDead(), StatusDead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := tt.changes[len(tt.changes)-1]
			if last.Field != FieldStatus {
				t.Fatalf("expected status to be applied last, got %s", last.Field)
			}
			for _, c := range tt.changes {
				v, result := Normalize(c.Field, c.Raw)
				if !result.Allowed {
					t.Fatalf("change %s=%q rejected: %s", c.Field, c.Raw, result.Reason)
				}
				if c.Field == FieldStatus && v.Stored != string(tt.wantStatus) {
					t.Errorf("status = %v, want %s", v.Stored, tt.wantStatus)
				}
			}
		})
	}
}

func TestFinishRepairsResetsDamage(t *testing.T) {
	for _, c := range FinishRepairs("", "") {
		if c.Field == FieldDamage && c.Raw != "0" {
			t.Errorf("damage = %q, want 0", c.Raw)
		}
	}
}
