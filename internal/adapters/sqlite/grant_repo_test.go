package sqlite_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/example/shiptracker/internal/adapters/sqlite"
	"github.com/example/shiptracker/internal/ports/secondary"
)

func TestGrantRepository_GuildGrants(t *testing.T) {
	repo := sqlite.NewGrantRepository(setupTestDB(t))
	ctx := context.Background()

	for _, role := range []int64{701, 700, 700} {
		if err := repo.AddGuildRole(ctx, 7, role); err != nil {
			t.Fatalf("AddGuildRole failed: %v", err)
		}
	}
	_ = repo.AddGuildRole(ctx, 8, 800)

	roles, err := repo.ListGuildRoles(ctx, 7)
	if err != nil {
		t.Fatalf("ListGuildRoles failed: %v", err)
	}
	if !reflect.DeepEqual(roles, []int64{700, 701}) {
		t.Errorf("roles = %v, want [700 701]", roles)
	}

	_ = repo.RemoveGuildRole(ctx, 7, 700)
	_ = repo.RemoveGuildRole(ctx, 7, 999)
	roles, _ = repo.ListGuildRoles(ctx, 7)
	if !reflect.DeepEqual(roles, []int64{701}) {
		t.Errorf("roles after revoke = %v, want [701]", roles)
	}

	_ = repo.AddGuildUser(ctx, 7, 1001)
	users, _ := repo.ListGuildUsers(ctx, 7)
	if !reflect.DeepEqual(users, []int64{1001}) {
		t.Errorf("users = %v", users)
	}
	_ = repo.RemoveGuildUser(ctx, 7, 1001)
	users, _ = repo.ListGuildUsers(ctx, 7)
	if len(users) != 0 {
		t.Errorf("expected no users after revoke, got %v", users)
	}
}

func TestGrantRepository_ShipGrants(t *testing.T) {
	database := setupTestDB(t)
	seedWar(t, database, 1)
	ship := seedShip(t, database, 7, 1, "Alpha")
	repo := sqlite.NewGrantRepository(database)
	ctx := context.Background()

	if err := repo.AddShipUser(ctx, &secondary.ShipGrantRecord{ShipID: ship, UserID: 2002, GrantedBy: 1001, CreatedAt: 1}); err != nil {
		t.Fatalf("AddShipUser failed: %v", err)
	}
	// re-grant keeps the original grantor
	_ = repo.AddShipUser(ctx, &secondary.ShipGrantRecord{ShipID: ship, UserID: 2002, GrantedBy: 3003, CreatedAt: 2})

	grants, err := repo.ListShipUsers(ctx, ship)
	if err != nil {
		t.Fatalf("ListShipUsers failed: %v", err)
	}
	if len(grants) != 1 || grants[0].GrantedBy != 1001 {
		t.Errorf("unexpected grants: %+v", grants)
	}

	_ = repo.RemoveShipUser(ctx, ship, 2002)
	grants, _ = repo.ListShipUsers(ctx, ship)
	if len(grants) != 0 {
		t.Errorf("expected grant revoked, got %+v", grants)
	}
}
