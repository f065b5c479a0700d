// Package wire provides dependency injection for shiptracker.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"sync"
	"time"

	cliadapter "github.com/example/shiptracker/internal/adapters/cli"
	"github.com/example/shiptracker/internal/adapters/sqlite"
	"github.com/example/shiptracker/internal/app"
	"github.com/example/shiptracker/internal/config"
	"github.com/example/shiptracker/internal/ctxutil"
	"github.com/example/shiptracker/internal/db"
	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/telemetry"
)

var (
	cfg      *config.Config
	database *sql.DB

	warService      primary.WarService
	shipService     primary.ShipService
	historyService  primary.HistoryService
	instanceService primary.InstanceService
	authService     *app.AuthServiceImpl

	shutdownTelemetry func(context.Context) error
	stopSweepers      context.CancelFunc
	sweepersDone      <-chan struct{}

	once sync.Once
)

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// WarService returns the singleton WarService instance.
func WarService() primary.WarService {
	once.Do(initServices)
	return warService
}

// ShipService returns the singleton ShipService instance.
func ShipService() primary.ShipService {
	once.Do(initServices)
	return shipService
}

// HistoryService returns the singleton HistoryService instance.
func HistoryService() primary.HistoryService {
	once.Do(initServices)
	return historyService
}

// InstanceService returns the singleton InstanceService instance.
func InstanceService() primary.InstanceService {
	once.Do(initServices)
	return instanceService
}

// AuthService returns the singleton AuthService instance.
func AuthService() primary.AuthService {
	once.Do(initServices)
	return authService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	ctx := context.Background()

	var err error
	cfg, err = config.LoadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTelemetry, err = telemetry.Setup(ctx, cfg.OTelEndpoint)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	}

	database, err = db.Open(ctx, cfg.DBPath, cfg.StoreTimeout)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	stores := app.Stores{
		Tx:        sqlite.NewTransactor(database),
		Wars:      sqlite.NewWarRepository(database),
		Ships:     sqlite.NewShipRepository(database),
		Supplies:  sqlite.NewSupplyRepository(database),
		History:   sqlite.NewHistoryRepository(database),
		Instances: sqlite.NewInstanceRepository(database),
		Grants:    sqlite.NewGrantRepository(database),
	}
	opts := app.Options{Timeout: cfg.StoreTimeout}

	// Create services (primary ports implementation)
	authService = app.NewAuthService(stores, app.AuthCacheOptions{
		RolesTTL:    cfg.AuthRolesTTL,
		UsersTTL:    cfg.AuthUsersTTL,
		PresenceTTL: cfg.AuthPresenceTTL,
		MaxEntries:  cfg.CacheMaxEntries,
	}, opts)
	warService = app.NewWarService(stores, opts)
	shipService = app.NewShipService(stores, authService, opts)
	historyService = app.NewHistoryService(stores, authService, opts)
	instanceService = app.NewInstanceService(stores, authService, opts)

	if err := bootstrap(ctx); err != nil {
		log.Fatalf("failed to bootstrap: %v", err)
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	stopSweepers = cancel
	sweepersDone = authService.StartSweepers(sweepCtx, cfg.CacheSweepInterval)
}

// bootstrap ensures the configured war exists and applies the grant seed.
func bootstrap(ctx context.Context) error {
	ctx = ctxutil.WithPrincipal(ctx, ctxutil.SystemPrincipal)

	if cfg.War > 0 {
		res, err := warService.EnsureWar(ctx, cfg.War)
		if err != nil {
			return err
		}
		if res.Created {
			log.Printf("started war %d", cfg.War)
		}
	}

	seed, err := config.LoadSeed(cfg.SeedPath)
	if err != nil {
		return err
	}
	grants := make([]primary.GuildGrants, 0, len(seed.Guilds))
	for _, g := range seed.Guilds {
		grants = append(grants, primary.GuildGrants{GuildID: g.ID, RoleIDs: g.Roles, UserIDs: g.Users})
	}
	return authService.SeedGrants(ctx, grants)
}

// Shutdown stops the cache sweepers, flushes spans and closes the database.
// It is a no-op if no service was ever requested.
func Shutdown(ctx context.Context) {
	if database == nil {
		return
	}
	stopSweepers()
	select {
	case <-sweepersDone:
	case <-time.After(time.Second):
		log.Printf("cache sweepers did not stop in time")
	}
	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(ctx); err != nil {
			log.Printf("failed to flush spans: %v", err)
		}
	}
	if err := database.Close(); err != nil {
		log.Printf("failed to close database: %v", err)
	}
}

// ShipAdapter returns a new ShipAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ShipAdapter() *cliadapter.ShipAdapter {
	return ShipAdapterWithOutput(os.Stdout)
}

// ShipAdapterWithOutput returns a new ShipAdapter writing to the given output.
func ShipAdapterWithOutput(out io.Writer) *cliadapter.ShipAdapter {
	return cliadapter.NewShipAdapter(ShipService(), out)
}

// WarAdapter returns a new WarAdapter writing to stdout.
func WarAdapter() *cliadapter.WarAdapter {
	return cliadapter.NewWarAdapter(WarService(), os.Stdout)
}

// HistoryAdapter returns a new HistoryAdapter writing to stdout.
func HistoryAdapter() *cliadapter.HistoryAdapter {
	return cliadapter.NewHistoryAdapter(HistoryService(), os.Stdout)
}

// InstanceAdapter returns a new InstanceAdapter writing to stdout.
func InstanceAdapter() *cliadapter.InstanceAdapter {
	return cliadapter.NewInstanceAdapter(InstanceService(), os.Stdout)
}

// AuthAdapter returns a new AuthAdapter writing to stdout.
func AuthAdapter() *cliadapter.AuthAdapter {
	return cliadapter.NewAuthAdapter(AuthService(), os.Stdout)
}
