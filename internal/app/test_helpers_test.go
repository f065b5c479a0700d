package app

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/example/shiptracker/internal/adapters/sqlite"
	"github.com/example/shiptracker/internal/ctxutil"
	"github.com/example/shiptracker/internal/db"
	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/ports/secondary"
)

// ============================================================================
// Clock
// ============================================================================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ============================================================================
// Counting grant repository
// ============================================================================

// countingGrantRepo counts grant lookups so cache behaviour is observable.
type countingGrantRepo struct {
	secondary.GrantRepository

	mu        sync.Mutex
	roleLoads int
	userLoads int
	shipLoads int
	listErr   error
}

func (r *countingGrantRepo) ListGuildRoles(ctx context.Context, guildID int64) ([]int64, error) {
	r.mu.Lock()
	r.roleLoads++
	err := r.listErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.GrantRepository.ListGuildRoles(ctx, guildID)
}

func (r *countingGrantRepo) ListGuildUsers(ctx context.Context, guildID int64) ([]int64, error) {
	r.mu.Lock()
	r.userLoads++
	err := r.listErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.GrantRepository.ListGuildUsers(ctx, guildID)
}

func (r *countingGrantRepo) ListShipUsers(ctx context.Context, shipID int64) ([]*secondary.ShipGrantRecord, error) {
	r.mu.Lock()
	r.shipLoads++
	err := r.listErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.GrantRepository.ListShipUsers(ctx, shipID)
}

func (r *countingGrantRepo) loads() (roles, users, ships int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roleLoads, r.userLoads, r.shipLoads
}

// ============================================================================
// Test Environment
// ============================================================================

type testEnv struct {
	db        *sql.DB
	clock     *fakeClock
	grants    *countingGrantRepo
	auth      *AuthServiceImpl
	wars      *WarServiceImpl
	ships     *ShipServiceImpl
	history   *HistoryServiceImpl
	instances *InstanceServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithTimeout(t, 5*time.Second)
}

// newTestEnvWithTimeout uses storeTimeout both per operation and as the
// database busy timeout, the way wire does.
func newTestEnvWithTimeout(t *testing.T, storeTimeout time.Duration) *testEnv {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), storeTimeout)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	clock := newFakeClock()
	grants := &countingGrantRepo{GrantRepository: sqlite.NewGrantRepository(database)}
	stores := Stores{
		Tx:        sqlite.NewTransactor(database),
		Wars:      sqlite.NewWarRepository(database),
		Ships:     sqlite.NewShipRepository(database),
		Supplies:  sqlite.NewSupplyRepository(database),
		History:   sqlite.NewHistoryRepository(database),
		Instances: sqlite.NewInstanceRepository(database),
		Grants:    grants,
	}
	opts := Options{Timeout: storeTimeout, Now: clock.Now}

	authService := NewAuthService(stores, AuthCacheOptions{
		RolesTTL:    time.Minute,
		UsersTTL:    time.Minute,
		PresenceTTL: time.Minute,
	}, opts)

	return &testEnv{
		db:        database,
		clock:     clock,
		grants:    grants,
		auth:      authService,
		wars:      NewWarService(stores, opts),
		ships:     NewShipService(stores, authService, opts),
		history:   NewHistoryService(stores, authService, opts),
		instances: NewInstanceService(stores, authService, opts),
	}
}

func systemCtx() context.Context {
	return ctxutil.WithPrincipal(context.Background(), ctxutil.SystemPrincipal)
}

func userCtx(guildID, userID int64, roleIDs ...int64) context.Context {
	return ctxutil.WithPrincipal(context.Background(), ctxutil.Principal{
		GuildID: guildID,
		UserID:  userID,
		RoleIDs: roleIDs,
	})
}

func adminCtx(guildID, userID int64) context.Context {
	return ctxutil.WithPrincipal(context.Background(), ctxutil.Principal{
		GuildID: guildID,
		UserID:  userID,
		Admin:   true,
	})
}

func (e *testEnv) war(t *testing.T, id int64) {
	t.Helper()
	if _, err := e.wars.CreateWar(systemCtx(), id); err != nil {
		t.Fatalf("CreateWar(%d) failed: %v", id, err)
	}
}

func (e *testEnv) ship(t *testing.T, guildID, warID int64, name string) *primary.Ship {
	t.Helper()
	res, err := e.ships.CreateShip(systemCtx(), primary.CreateShipRequest{GuildID: guildID, WarID: warID, Name: name})
	if err != nil {
		t.Fatalf("CreateShip(%q) failed: %v", name, err)
	}
	return res.Ship
}

func (e *testEnv) view(t *testing.T, shipID, guildID, channelID, messageID int64, original bool) {
	t.Helper()
	_, err := e.instances.RegisterInstance(systemCtx(), primary.RegisterInstanceRequest{
		ShipID: shipID, GuildID: guildID, ChannelID: channelID, MessageID: messageID, IsOriginal: original,
	})
	if err != nil {
		t.Fatalf("RegisterInstance failed: %v", err)
	}
}

func (e *testEnv) updates(t *testing.T, shipID int64) []*primary.HistoryEntry {
	t.Helper()
	page, err := e.history.ListHistory(context.Background(), primary.HistoryQuery{ShipID: shipID, Kind: "update", Limit: MaxHistoryLimit})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	return page.Entries
}
