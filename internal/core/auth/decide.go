// Package auth composes authorization decisions from already-loaded grant
// sets. Loading and caching the sets is the resolver's job.
package auth

// Set is an immutable set of Discord-style snowflake ids.
type Set map[int64]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...int64) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Any reports whether any of ids is in the set.
func (s Set) Any(ids []int64) bool {
	for _, id := range ids {
		if s.Has(id) {
			return true
		}
	}
	return false
}

// Basis names the rule that granted access.
type Basis string

const (
	BasisNone      Basis = ""
	BasisSystem    Basis = "system"
	BasisShipGrant Basis = "ship_grant"
	BasisGuildUser Basis = "guild_user"
	BasisGuildRole Basis = "guild_role"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Basis   Basis
	// GuildID is the guild whose grant matched, for guild-level bases.
	GuildID int64
}

// GuildGrants are the guild-level grants of one guild.
type GuildGrants struct {
	GuildID int64
	Roles   Set
	Users   Set
}

// Request is what is being checked.
type Request struct {
	UserID  int64
	RoleIDs []int64
	// ShipGrant reports whether the user holds a ship-level grant on the
	// ship in question. Always false when no ship is involved.
	ShipGrant bool
}

// Decide evaluates the request against the grants of each guild, in order.
// Rules, first match wins:
// - a ship-level grant
// - the user is an authorized user of any guild
// - any held role is an authorized role of any guild
func Decide(req Request, guilds []GuildGrants) Decision {
	if req.ShipGrant {
		return Decision{Allowed: true, Basis: BasisShipGrant}
	}
	for _, g := range guilds {
		if g.Users.Has(req.UserID) {
			return Decision{Allowed: true, Basis: BasisGuildUser, GuildID: g.GuildID}
		}
	}
	for _, g := range guilds {
		if g.Roles.Any(req.RoleIDs) {
			return Decision{Allowed: true, Basis: BasisGuildRole, GuildID: g.GuildID}
		}
	}
	return Decision{}
}

// PresenceGuilds returns the guilds a ship is present in: its home guild
// first, then each instance guild once.
func PresenceGuilds(home int64, instanceGuilds []int64) []int64 {
	out := []int64{home}
	seen := map[int64]bool{home: true}
	for _, g := range instanceGuilds {
		if g == 0 || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}
