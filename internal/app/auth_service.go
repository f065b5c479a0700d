package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/example/shiptracker/internal/cache"
	"github.com/example/shiptracker/internal/core/auth"
	"github.com/example/shiptracker/internal/ctxutil"
	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/ports/secondary"
)

// AuthCacheOptions sizes the resolver's caches.
type AuthCacheOptions struct {
	RolesTTL    time.Duration
	UsersTTL    time.Duration
	PresenceTTL time.Duration
	// MaxEntries bounds each cache; 0 means unbounded.
	MaxEntries int
}

// AuthServiceImpl implements the AuthService interface.
//
// Guild role sets, guild user sets, per-ship user grants and ship presence
// are cached with hard TTLs. Grant writes invalidate the keys they touch.
type AuthServiceImpl struct {
	shipRepo     secondary.ShipRepository
	instanceRepo secondary.InstanceRepository
	grantRepo    secondary.GrantRepository
	run          storeRunner

	roles     *cache.Cache[int64, auth.Set]
	users     *cache.Cache[int64, auth.Set]
	shipUsers *cache.Cache[int64, auth.Set]
	presence  *cache.Cache[int64, []int64]
}

// NewAuthService creates a new AuthService with injected dependencies.
func NewAuthService(stores Stores, cacheOpts AuthCacheOptions, opts Options) *AuthServiceImpl {
	newCache := func(name string, ttl time.Duration) cache.Options {
		return cache.Options{TTL: ttl, MaxEntries: cacheOpts.MaxEntries, Now: opts.Now, Name: name}
	}
	return &AuthServiceImpl{
		shipRepo:     stores.Ships,
		instanceRepo: stores.Instances,
		grantRepo:    stores.Grants,
		run:          newStoreRunner(stores.Tx, opts),
		roles:        cache.New[int64, auth.Set](newCache("auth-roles", cacheOpts.RolesTTL), cache.Int64Hash),
		users:        cache.New[int64, auth.Set](newCache("auth-users", cacheOpts.UsersTTL), cache.Int64Hash),
		shipUsers:    cache.New[int64, auth.Set](newCache("auth-ship-users", cacheOpts.UsersTTL), cache.Int64Hash),
		presence:     cache.New[int64, []int64](newCache("auth-presence", cacheOpts.PresenceTTL), cache.Int64Hash),
	}
}

// IsAuthorized resolves whether a principal may manage a guild's ships, or
// one ship when ShipID is set. Lookup failures resolve to false.
func (s *AuthServiceImpl) IsAuthorized(ctx context.Context, q primary.AuthQuery) bool {
	return s.Explain(ctx, q).Allowed
}

// Explain is IsAuthorized with the rule that matched. A system principal in
// ctx is always allowed.
func (s *AuthServiceImpl) Explain(ctx context.Context, q primary.AuthQuery) primary.AuthDecision {
	if p, ok := ctxutil.PrincipalFromContext(ctx); ok && p.System {
		return primary.AuthDecision{Allowed: true, Basis: string(auth.BasisSystem)}
	}

	var d auth.Decision
	err := s.run.read(ctx, "auth.decide", func(ctx context.Context) error {
		var err error
		d, err = s.decide(ctx, q)
		return err
	})
	if err != nil {
		log.Printf("auth: lookup failed for user %d (guild %d): %v", q.UserID, q.GuildID, err)
		return primary.AuthDecision{}
	}
	return primary.AuthDecision{Allowed: d.Allowed, Basis: string(d.Basis), GuildID: d.GuildID}
}

// GrantGuildRole authorizes a role in a guild.
func (s *AuthServiceImpl) GrantGuildRole(ctx context.Context, guildID, roleID int64) error {
	return s.guildWrite(ctx, "auth.grant_role", guildID, func(ctx context.Context) error {
		return s.grantRepo.AddGuildRole(ctx, guildID, roleID)
	})
}

// RevokeGuildRole removes a role grant.
func (s *AuthServiceImpl) RevokeGuildRole(ctx context.Context, guildID, roleID int64) error {
	return s.guildWrite(ctx, "auth.revoke_role", guildID, func(ctx context.Context) error {
		return s.grantRepo.RemoveGuildRole(ctx, guildID, roleID)
	})
}

// GrantGuildUser authorizes a user in a guild.
func (s *AuthServiceImpl) GrantGuildUser(ctx context.Context, guildID, userID int64) error {
	return s.guildWrite(ctx, "auth.grant_user", guildID, func(ctx context.Context) error {
		return s.grantRepo.AddGuildUser(ctx, guildID, userID)
	})
}

// RevokeGuildUser removes a user grant.
func (s *AuthServiceImpl) RevokeGuildUser(ctx context.Context, guildID, userID int64) error {
	return s.guildWrite(ctx, "auth.revoke_user", guildID, func(ctx context.Context) error {
		return s.grantRepo.RemoveGuildUser(ctx, guildID, userID)
	})
}

// GrantShipUser grants one user rights on one ship; the grantor is the
// acting principal.
func (s *AuthServiceImpl) GrantShipUser(ctx context.Context, shipID, userID int64) error {
	return s.shipWrite(ctx, "auth.grant_ship_user", shipID, func(ctx context.Context) error {
		return s.grantRepo.AddShipUser(ctx, &secondary.ShipGrantRecord{
			ShipID:    shipID,
			UserID:    userID,
			GrantedBy: ctxutil.ActorFromContext(ctx),
			CreatedAt: s.run.micros(),
		})
	})
}

// RevokeShipUser removes a per-ship grant.
func (s *AuthServiceImpl) RevokeShipUser(ctx context.Context, shipID, userID int64) error {
	return s.shipWrite(ctx, "auth.revoke_ship_user", shipID, func(ctx context.Context) error {
		return s.grantRepo.RemoveShipUser(ctx, shipID, userID)
	})
}

// ListGuildGrants retrieves a guild's authorized roles and users.
func (s *AuthServiceImpl) ListGuildGrants(ctx context.Context, guildID int64) (*primary.GuildGrants, error) {
	grants := &primary.GuildGrants{GuildID: guildID}
	err := s.run.read(ctx, "auth.list_guild", func(ctx context.Context) error {
		var err error
		if grants.RoleIDs, err = s.grantRepo.ListGuildRoles(ctx, guildID); err != nil {
			return err
		}
		grants.UserIDs, err = s.grantRepo.ListGuildUsers(ctx, guildID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// ListShipGrants retrieves a ship's user grants.
func (s *AuthServiceImpl) ListShipGrants(ctx context.Context, shipID int64) ([]*primary.ShipGrant, error) {
	var records []*secondary.ShipGrantRecord
	err := s.run.read(ctx, "auth.list_ship", func(ctx context.Context) error {
		if _, err := s.shipRepo.GetByID(ctx, shipID); err != nil {
			return err
		}
		var err error
		records, err = s.grantRepo.ListShipUsers(ctx, shipID)
		return err
	})
	if err != nil {
		return nil, err
	}

	grants := make([]*primary.ShipGrant, len(records))
	for i, r := range records {
		grants[i] = &primary.ShipGrant{ShipID: r.ShipID, UserID: r.UserID, GrantedBy: r.GrantedBy}
	}
	return grants, nil
}

// SeedGrants applies startup grants idempotently in one transaction.
func (s *AuthServiceImpl) SeedGrants(ctx context.Context, seed []primary.GuildGrants) error {
	for _, g := range seed {
		if err := requireGuildAdmin(ctx, g.GuildID); err != nil {
			return err
		}
	}

	_, err := s.run.write(ctx, "auth.seed", func(ctx context.Context) error {
		for _, g := range seed {
			for _, role := range g.RoleIDs {
				if err := s.grantRepo.AddGuildRole(ctx, g.GuildID, role); err != nil {
					return err
				}
			}
			for _, user := range g.UserIDs {
				if err := s.grantRepo.AddGuildUser(ctx, g.GuildID, user); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, g := range seed {
		s.InvalidateGuild(g.GuildID)
	}
	return nil
}

// InvalidateGuild drops cached grants of a guild.
func (s *AuthServiceImpl) InvalidateGuild(guildID int64) {
	s.roles.Invalidate(guildID)
	s.users.Invalidate(guildID)
}

// InvalidateShip drops cached grants and presence of a ship.
func (s *AuthServiceImpl) InvalidateShip(shipID int64) {
	s.shipUsers.Invalidate(shipID)
	s.presence.Invalidate(shipID)
}

// StartSweepers evicts expired entries from every cache each interval until
// ctx is cancelled. The returned channel closes once all sweepers stopped.
func (s *AuthServiceImpl) StartSweepers(ctx context.Context, interval time.Duration) <-chan struct{} {
	stopped := []<-chan struct{}{
		s.roles.StartSweeper(ctx, interval),
		s.users.StartSweeper(ctx, interval),
		s.shipUsers.StartSweeper(ctx, interval),
		s.presence.StartSweeper(ctx, interval),
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for _, ch := range stopped {
		wg.Add(1)
		go func(ch <-chan struct{}) {
			defer wg.Done()
			<-ch
		}(ch)
	}
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// Helper methods

func (s *AuthServiceImpl) decide(ctx context.Context, q primary.AuthQuery) (auth.Decision, error) {
	req := auth.Request{UserID: q.UserID, RoleIDs: q.RoleIDs}
	guildIDs := []int64{q.GuildID}

	if q.ShipID != nil {
		shipID := *q.ShipID
		granted, err := s.shipUsers.GetOrLoad(ctx, shipID, func(ctx context.Context) (auth.Set, error) {
			records, err := s.grantRepo.ListShipUsers(ctx, shipID)
			if err != nil {
				return nil, err
			}
			ids := make([]int64, len(records))
			for i, r := range records {
				ids[i] = r.UserID
			}
			return auth.NewSet(ids...), nil
		})
		if err != nil {
			return auth.Decision{}, err
		}
		req.ShipGrant = granted.Has(q.UserID)
		if req.ShipGrant {
			return auth.Decide(req, nil), nil
		}

		guildIDs, err = s.presence.GetOrLoad(ctx, shipID, func(ctx context.Context) ([]int64, error) {
			ship, err := s.shipRepo.GetByID(ctx, shipID)
			if err != nil {
				return nil, err
			}
			guilds, err := s.instanceRepo.GuildsForShip(ctx, shipID)
			if err != nil {
				return nil, err
			}
			return auth.PresenceGuilds(ship.GuildID, guilds), nil
		})
		if err != nil {
			return auth.Decision{}, err
		}
	}

	grants := make([]auth.GuildGrants, 0, len(guildIDs))
	for _, guildID := range guildIDs {
		if guildID == 0 {
			continue
		}
		g, err := s.guildGrants(ctx, guildID)
		if err != nil {
			return auth.Decision{}, err
		}
		grants = append(grants, g)
	}
	return auth.Decide(req, grants), nil
}

func (s *AuthServiceImpl) guildGrants(ctx context.Context, guildID int64) (auth.GuildGrants, error) {
	roles, err := s.roles.GetOrLoad(ctx, guildID, func(ctx context.Context) (auth.Set, error) {
		ids, err := s.grantRepo.ListGuildRoles(ctx, guildID)
		return auth.NewSet(ids...), err
	})
	if err != nil {
		return auth.GuildGrants{}, err
	}
	users, err := s.users.GetOrLoad(ctx, guildID, func(ctx context.Context) (auth.Set, error) {
		ids, err := s.grantRepo.ListGuildUsers(ctx, guildID)
		return auth.NewSet(ids...), err
	})
	if err != nil {
		return auth.GuildGrants{}, err
	}
	return auth.GuildGrants{GuildID: guildID, Roles: roles, Users: users}, nil
}

// guildWrite checks the principal administers guildID, applies fn and drops
// the guild's cached grants.
func (s *AuthServiceImpl) guildWrite(ctx context.Context, op string, guildID int64, fn func(ctx context.Context) error) error {
	if err := requireGuildAdmin(ctx, guildID); err != nil {
		return err
	}
	if _, err := s.run.write(ctx, op, fn); err != nil {
		return err
	}
	s.InvalidateGuild(guildID)
	return nil
}

// shipWrite authorizes the principal on shipID, applies fn and drops the
// ship's cached grants.
func (s *AuthServiceImpl) shipWrite(ctx context.Context, op string, shipID int64, fn func(ctx context.Context) error) error {
	if _, err := authorizeShip(ctx, s.run, s.shipRepo, s, shipID); err != nil {
		return err
	}
	if _, err := s.run.write(ctx, op, fn); err != nil {
		return err
	}
	s.InvalidateShip(shipID)
	return nil
}

// Ensure AuthServiceImpl implements the interface.
var _ primary.AuthService = (*AuthServiceImpl)(nil)
