// Package membership derives the user's membership tier standing from the
// wallet cache, the referral tree and the remote membership-state row. The
// resolver is descriptive, not authoritative: it echoes the static rule
// table alongside the computed fields and never decides advancement itself.
package membership

import (
	"context"

	"github.com/wallet-sync/internal/gateway"
	"github.com/wallet-sync/internal/identity"
	"github.com/wallet-sync/internal/logging"
	"github.com/wallet-sync/internal/types"
)

// rulesByLevel is the static advancement threshold table for the six
// non-zero tiers. V0 is implicit and has no rule entry.
var rulesByLevel = map[types.TierLevel]types.TierRule{
	types.TierV1: {MinBalance: 100, MinUsers: 5},
	types.TierV2: {MinBalance: 500, MinUsers: 15},
	types.TierV3: {MinBalance: 2000, MinUsers: 40},
	types.TierV4: {MinBalance: 10000, MinUsers: 100},
	types.TierV5: {MinBalance: 50000, MinUsers: 300},
	types.TierV6: {MinBalance: 200000, MinUsers: 1000},
}

// Rules returns a copy of the static tier rule table
func Rules() map[types.TierLevel]types.TierRule {
	rules := make(map[types.TierLevel]types.TierRule, len(rulesByLevel))
	for level, rule := range rulesByLevel {
		rules[level] = rule
	}
	return rules
}

// NextLevel returns the tier immediately following level in the fixed
// ordering, or nil when level is V6 or unrecognized. An unrecognized level
// means no ordering is known, which deliberately maps to the same nil as
// "already at max".
func NextLevel(level types.TierLevel) *types.TierLevel {
	for i, l := range types.TierOrder {
		if l == level {
			if i+1 < len(types.TierOrder) {
				next := types.TierOrder[i+1]
				return &next
			}
			return nil
		}
	}
	return nil
}

// WalletSource supplies the freshest wallet snapshot available
type WalletSource interface {
	GetAsync(ctx context.Context) types.WalletState
}

// TeamSource supplies the flat referral membership list
type TeamSource interface {
	TeamSummary(ctx context.Context) []types.ReferralEdge
}

// StateGateway is the remote ledger surface the resolver depends on
type StateGateway interface {
	Select(ctx context.Context, table string, filter gateway.Filter) ([]gateway.Row, error)
}

// Resolver computes membership snapshots for the current identity
type Resolver struct {
	identity identity.Provider
	ledger   StateGateway
	wallet   WalletSource
	team     TeamSource
	logger   *logging.Logger
}

// NewResolver creates a new membership tier resolver
func NewResolver(idp identity.Provider, ledger StateGateway, wallet WalletSource, team TeamSource, logger *logging.Logger) *Resolver {
	return &Resolver{
		identity: idp,
		ledger:   ledger,
		wallet:   wallet,
		team:     team,
		logger:   logger,
	}
}

// VipInfo computes the membership snapshot for the current identity. An
// absent identity yields the fixed default snapshot with an empty rule
// table. A missing or unreadable remote state row degrades to level V0 with
// all flags false rather than failing.
func (r *Resolver) VipInfo(ctx context.Context) types.MembershipSnapshot {
	if _, ok := r.identity.CurrentUser(); !ok {
		return types.MembershipSnapshot{
			CurrentLevel: types.TierV0,
			RulesByLevel: map[types.TierLevel]types.TierRule{},
		}
	}

	state := r.userState(ctx)
	snapshot := r.wallet.GetAsync(ctx)

	effectiveUsers := 0
	for _, edge := range r.team.TeamSummary(ctx) {
		if edge.Depth >= 1 {
			effectiveUsers++
		}
	}

	return types.MembershipSnapshot{
		CurrentLevel:   state.CurrentLevel,
		NextLevel:      NextLevel(state.CurrentLevel),
		IsActivated:    state.IsActivated,
		IsFunded:       state.IsFunded,
		IsLocked:       state.IsLocked,
		Balance:        snapshot.Balance,
		EffectiveUsers: effectiveUsers,
		RulesByLevel:   Rules(),
	}
}

// userState reads the remote membership-state row, defaulting every field
// when the row is missing or the read fails
func (r *Resolver) userState(ctx context.Context) types.UserState {
	state := types.UserState{CurrentLevel: types.TierV0}

	id, ok := r.identity.CurrentUser()
	if !ok {
		return state
	}

	rows, err := r.ledger.Select(ctx, gateway.TableUserState, gateway.Filter{
		"user_id": gateway.Eq(id.ID),
	})
	if err != nil {
		r.logger.WithError(err).Debug("membership state read failed, using defaults")
		return state
	}
	if len(rows) == 0 {
		return state
	}

	row := rows[0]
	if level, ok := row.Str("current_level"); ok && level != "" {
		state.CurrentLevel = types.TierLevel(level)
	}
	if activated, ok := row.Bool("is_activated"); ok {
		state.IsActivated = activated
	}
	if funded, ok := row.Bool("is_funded"); ok {
		state.IsFunded = funded
	}
	if locked, ok := row.Bool("is_locked"); ok {
		state.IsLocked = locked
	}
	return state
}
