package app

import (
	"testing"

	"github.com/example/shiptracker/internal/apperr"
	"github.com/example/shiptracker/internal/ports/primary"
)

func TestRegisterInstance(t *testing.T) {
	env := newTestEnv(t)
	env.war(t, 1)
	a := env.ship(t, 7, 1, "Alpha")
	b := env.ship(t, 7, 1, "Bravo")
	ctx := systemCtx()

	req := primary.RegisterInstanceRequest{ShipID: a.ID, GuildID: 7, ChannelID: 100, MessageID: 1000, IsOriginal: true}
	first, err := env.instances.RegisterInstance(ctx, req)
	if err != nil || !first.Created {
		t.Fatalf("RegisterInstance = %+v, %v", first, err)
	}

	again, err := env.instances.RegisterInstance(ctx, req)
	if err != nil || again.Created || again.Instance.ID != first.Instance.ID {
		t.Errorf("expected idempotent re-registration, got %+v, %v", again, err)
	}

	_, err = env.instances.RegisterInstance(ctx, primary.RegisterInstanceRequest{ShipID: b.ID, GuildID: 7, ChannelID: 100, MessageID: 1000})
	if !apperr.IsCode(err, apperr.Validation) {
		t.Errorf("expected Validation for a triple bound elsewhere, got %v", err)
	}

	_, err = env.instances.RegisterInstance(ctx, primary.RegisterInstanceRequest{ShipID: a.ID, GuildID: 7, ChannelID: 100, MessageID: 1001, IsOriginal: true})
	if !apperr.IsCode(err, apperr.Validation) {
		t.Errorf("expected Validation for a second original, got %v", err)
	}

	_, err = env.instances.RegisterInstance(ctx, primary.RegisterInstanceRequest{ShipID: 404, GuildID: 7, ChannelID: 1, MessageID: 1})
	if !apperr.IsCode(err, apperr.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}

	views, err := env.instances.ListInstances(ctx, a.ID)
	if err != nil || len(views) != 1 {
		t.Errorf("ListInstances = %+v, %v", views, err)
	}
}

func TestRegisterInstance_OriginalFlagMustMatch(t *testing.T) {
	env := newTestEnv(t)
	env.war(t, 1)
	s := env.ship(t, 7, 1, "Alpha")
	ctx := systemCtx()

	env.view(t, s.ID, 7, 100, 1000, false)

	_, err := env.instances.RegisterInstance(ctx, primary.RegisterInstanceRequest{ShipID: s.ID, GuildID: 7, ChannelID: 100, MessageID: 1000, IsOriginal: true})
	if !apperr.IsCode(err, apperr.Validation) {
		t.Errorf("expected Validation when re-registering a plain view as original, got %v", err)
	}

	views, err := env.instances.ListInstances(ctx, s.ID)
	if err != nil || len(views) != 1 || views[0].IsOriginal {
		t.Errorf("expected the view to stay non-original, got %+v, %v", views, err)
	}
}

func TestRegisterInstance_RequiresShipRights(t *testing.T) {
	env := newTestEnv(t)
	env.war(t, 1)
	s := env.ship(t, 7, 1, "Alpha")
	_ = env.auth.GrantGuildUser(systemCtx(), 8, 80)

	_, err := env.instances.RegisterInstance(userCtx(8, 80), primary.RegisterInstanceRequest{ShipID: s.ID, GuildID: 8, ChannelID: 1, MessageID: 1})
	if !apperr.IsCode(err, apperr.NotAuthorized) {
		t.Errorf("expected NotAuthorized for a foreign guild, got %v", err)
	}
}

func TestListFanout_CoversLinkGroup(t *testing.T) {
	env := newTestEnv(t)
	env.war(t, 1)
	root := env.ship(t, 7, 1, "Alpha")
	twin := env.ship(t, 8, 1, "Alpha")
	ctx := systemCtx()
	if _, err := env.ships.LinkShip(ctx, twin.ID, root.ID); err != nil {
		t.Fatalf("LinkShip failed: %v", err)
	}
	env.view(t, root.ID, 7, 100, 1000, true)
	env.view(t, twin.ID, 8, 200, 2000, true)

	views, err := env.instances.ListFanout(ctx, twin.ID)
	if err != nil {
		t.Fatalf("ListFanout failed: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("expected views of both ships, got %d", len(views))
	}
}
