package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/example/shiptracker/internal/apperr"
	"github.com/example/shiptracker/internal/ctxutil"
	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/ports/secondary"
	"github.com/example/shiptracker/internal/telemetry"
)

// DefaultStoreTimeout bounds a service operation when Options.Timeout is unset.
const DefaultStoreTimeout = 5 * time.Second

// Stores bundles the secondary ports the services drive.
type Stores struct {
	Tx        secondary.Transactor
	Wars      secondary.WarRepository
	Ships     secondary.ShipRepository
	Supplies  secondary.SupplyRepository
	History   secondary.HistoryRepository
	Instances secondary.InstanceRepository
	Grants    secondary.GrantRepository
}

// Options tunes the services.
type Options struct {
	// Timeout bounds every store operation.
	Timeout time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// storeRunner runs service operations under a timeout and a span, mapping
// unclassified failures to StoreUnavailable.
type storeRunner struct {
	tx      secondary.Transactor
	timeout time.Duration
	now     func() time.Time
}

func newStoreRunner(tx secondary.Transactor, opts Options) storeRunner {
	r := storeRunner{tx: tx, timeout: opts.Timeout, now: opts.Now}
	if r.timeout <= 0 {
		r.timeout = DefaultStoreTimeout
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// micros is the current time as stored in timestamp columns.
func (r storeRunner) micros() int64 {
	return r.now().UnixMicro()
}

// read runs fn outside a transaction.
func (r storeRunner) read(ctx context.Context, op string, fn func(ctx context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	ctx, span := telemetry.Start(ctx, op)
	defer func() { telemetry.End(span, err) }()

	return storeErr(ctx, op, fn(ctx))
}

// write runs fn in one transaction tagged with a fresh op id, which is
// returned so callers can correlate the audit rows.
func (r storeRunner) write(ctx context.Context, op string, fn func(ctx context.Context) error) (opID string, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opID = uuid.NewString()
	ctx = ctxutil.WithOpID(ctx, opID)
	ctx, span := telemetry.Start(ctx, op, attribute.String("shiptracker.op_id", opID))
	defer func() { telemetry.End(span, err) }()

	if err := r.tx.WithinTx(ctx, fn); err != nil {
		return "", storeErr(ctx, op, err)
	}
	return opID, nil
}

// storeErr keeps classified errors and treats everything else as a store
// failure.
func storeErr(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if apperr.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return apperr.Wrap(apperr.StoreUnavailable, err, "%s timed out", op)
	}
	return apperr.Wrap(apperr.StoreUnavailable, err, "%s failed", op)
}

// authorizer is the slice of the authorization resolver the other services use.
type authorizer interface {
	Explain(ctx context.Context, q primary.AuthQuery) primary.AuthDecision
	InvalidateShip(shipID int64)
}

// requireAuthorized checks the principal in ctx against a guild, or against
// one ship when shipID is set. System principals always pass.
func requireAuthorized(ctx context.Context, auth authorizer, guildID int64, shipID *int64) error {
	p, ok := ctxutil.PrincipalFromContext(ctx)
	if !ok {
		return apperr.New(apperr.NotAuthorized, "no acting principal")
	}
	if p.System {
		return nil
	}
	if auth == nil {
		return apperr.New(apperr.NotAuthorized, "authorization is not configured")
	}

	d := auth.Explain(ctx, primary.AuthQuery{
		GuildID: guildID,
		UserID:  p.UserID,
		RoleIDs: p.RoleIDs,
		ShipID:  shipID,
	})
	if d.Allowed {
		return nil
	}
	if shipID != nil {
		return apperr.New(apperr.NotAuthorized, "user %d may not manage ship %d", p.UserID, *shipID)
	}
	return apperr.New(apperr.NotAuthorized, "user %d may not manage ships of guild %d", p.UserID, guildID)
}

// requireSystem admits only system principals. Wars span every guild, so
// no guild grant can administer them.
func requireSystem(ctx context.Context, action string) error {
	p, ok := ctxutil.PrincipalFromContext(ctx)
	if !ok {
		return apperr.New(apperr.NotAuthorized, "no acting principal")
	}
	if !p.System {
		return apperr.New(apperr.NotAuthorized, "user %d may not %s", p.UserID, action)
	}
	return nil
}

// requireGuildAdmin admits system principals and admins acting from guildID.
func requireGuildAdmin(ctx context.Context, guildID int64) error {
	p, ok := ctxutil.PrincipalFromContext(ctx)
	if !ok {
		return apperr.New(apperr.NotAuthorized, "no acting principal")
	}
	if p.System || (p.Admin && p.GuildID == guildID) {
		return nil
	}
	return apperr.New(apperr.NotAuthorized, "user %d is not an admin of guild %d", p.UserID, guildID)
}

func microsToTime(us int64) time.Time {
	return time.UnixMicro(us)
}

func isNotFound(err error) bool {
	return apperr.IsCode(err, apperr.NotFound)
}

// authorizeShip loads a ship and checks the principal may manage it, so an
// unknown ship surfaces as NotFound rather than a denial.
func authorizeShip(ctx context.Context, run storeRunner, ships secondary.ShipRepository, auth authorizer, shipID int64) (*secondary.ShipRecord, error) {
	var ship *secondary.ShipRecord
	err := run.read(ctx, "ship.authorize", func(ctx context.Context) error {
		var err error
		ship, err = ships.GetByID(ctx, shipID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := requireAuthorized(ctx, auth, ship.GuildID, &shipID); err != nil {
		return nil, err
	}
	return ship, nil
}
