package sqlite_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/example/shiptracker/internal/adapters/sqlite"
	"github.com/example/shiptracker/internal/apperr"
	"github.com/example/shiptracker/internal/ports/secondary"
)

func TestInstanceRepository_CreateAndLookup(t *testing.T) {
	database := setupTestDB(t)
	seedWar(t, database, 1)
	ship := seedShip(t, database, 7, 1, "Alpha")
	repo := sqlite.NewInstanceRepository(database)
	ctx := context.Background()

	in := &secondary.InstanceRecord{ShipID: ship, GuildID: 7, ChannelID: 70, MessageID: 7001, IsOriginal: true, CreatedAt: 5}
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if in.ID == 0 {
		t.Fatal("expected id to be assigned")
	}

	got, err := repo.GetByTriple(ctx, 7, 70, 7001)
	if err != nil || got == nil || got.ShipID != ship || !got.IsOriginal {
		t.Fatalf("GetByTriple = %+v, %v", got, err)
	}

	missing, err := repo.GetByTriple(ctx, 7, 70, 9999)
	if err != nil || missing != nil {
		t.Errorf("expected nil for free triple, got %+v, %v", missing, err)
	}

	has, err := repo.HasOriginal(ctx, ship)
	if err != nil || !has {
		t.Errorf("HasOriginal = %v, %v", has, err)
	}
}

func TestInstanceRepository_StorageConstraints(t *testing.T) {
	database := setupTestDB(t)
	seedWar(t, database, 1)
	ship := seedShip(t, database, 7, 1, "Alpha")
	other := seedShip(t, database, 7, 1, "Bravo")
	repo := sqlite.NewInstanceRepository(database)
	ctx := context.Background()

	_ = repo.Create(ctx, &secondary.InstanceRecord{ShipID: ship, GuildID: 7, ChannelID: 70, MessageID: 1, IsOriginal: true})

	err := repo.Create(ctx, &secondary.InstanceRecord{ShipID: other, GuildID: 7, ChannelID: 70, MessageID: 1})
	if !apperr.IsCode(err, apperr.DuplicateName) {
		t.Errorf("expected unique triple violation, got %v", err)
	}

	err = repo.Create(ctx, &secondary.InstanceRecord{ShipID: ship, GuildID: 8, ChannelID: 80, MessageID: 2, IsOriginal: true})
	if err == nil {
		t.Error("expected partial unique index to reject a second original")
	}
}

func TestInstanceRepository_ListAndGuilds(t *testing.T) {
	database := setupTestDB(t)
	seedWar(t, database, 1)
	a := seedShip(t, database, 7, 1, "Alpha")
	b := seedShip(t, database, 8, 1, "Alpha")
	seedInstance(t, database, a, 7, 70, 1, true)
	seedInstance(t, database, a, 8, 80, 2, false)
	seedInstance(t, database, a, 8, 81, 3, false)
	seedInstance(t, database, b, 9, 90, 4, true)
	repo := sqlite.NewInstanceRepository(database)
	ctx := context.Background()

	all, err := repo.ListByShips(ctx, []int64{a, b})
	if err != nil {
		t.Fatalf("ListByShips failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 instances, got %d", len(all))
	}

	none, err := repo.ListByShips(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("expected empty result for no ships, got %v, %v", none, err)
	}

	guilds, err := repo.GuildsForShip(ctx, a)
	if err != nil {
		t.Fatalf("GuildsForShip failed: %v", err)
	}
	if !reflect.DeepEqual(guilds, []int64{7, 8}) {
		t.Errorf("GuildsForShip = %v, want [7 8]", guilds)
	}
}
