package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/shiptracker/internal/ctxutil"
)

var actingAs struct {
	guild int64
	user  int64
	roles []int64
	admin bool
}

// AddPrincipalFlags registers the --as-* flags that name the acting user.
// Without --as-user commands run as the system principal.
func AddPrincipalFlags(root *cobra.Command) {
	root.PersistentFlags().Int64Var(&actingAs.guild, "as-guild", 0, "Guild the action comes from")
	root.PersistentFlags().Int64Var(&actingAs.user, "as-user", 0, "Acting user id (default: system)")
	root.PersistentFlags().Int64SliceVar(&actingAs.roles, "as-role", nil, "Role ids the acting user holds in --as-guild")
	root.PersistentFlags().BoolVar(&actingAs.admin, "as-admin", false, "Acting user manages --as-guild (required for guild grants)")
}

// actingContext returns the command context carrying the acting principal.
func actingContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctxutil.WithPrincipal(ctx, currentPrincipal())
}

func currentPrincipal() ctxutil.Principal {
	if actingAs.user == 0 {
		return ctxutil.SystemPrincipal
	}
	return ctxutil.Principal{
		GuildID: actingAs.guild,
		UserID:  actingAs.user,
		RoleIDs: actingAs.roles,
		Admin:   actingAs.admin,
	}
}

func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}
