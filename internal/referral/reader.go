// Package referral reads the depth-bounded referral tree for the current
// identity from the remote ledger.
package referral

import (
	"context"
	"strconv"

	"github.com/wallet-sync/internal/gateway"
	"github.com/wallet-sync/internal/identity"
	"github.com/wallet-sync/internal/logging"
	"github.com/wallet-sync/internal/types"
)

// maxDepth bounds the descendant query; only depths 1..3 are returned
const maxDepth = 4

// EdgeGateway is the remote ledger surface the reader depends on
type EdgeGateway interface {
	Select(ctx context.Context, table string, filter gateway.Filter) ([]gateway.Row, error)
}

// Reader produces the flat membership list used for eligibility counts
type Reader struct {
	identity identity.Provider
	ledger   EdgeGateway
	logger   *logging.Logger
}

// NewReader creates a new referral tree reader
func NewReader(idp identity.Provider, ledger EdgeGateway, logger *logging.Logger) *Reader {
	return &Reader{
		identity: idp,
		ledger:   ledger,
		logger:   logger,
	}
}

// TeamSummary returns all referral edges where the current identity is the
// ancestor, as a flat list. No deduplication or cycle detection happens here;
// acyclicity is the remote ledger's responsibility. An absent identity or a
// failed read yields an empty list.
func (r *Reader) TeamSummary(ctx context.Context) []types.ReferralEdge {
	id, ok := r.identity.CurrentUser()
	if !ok {
		return []types.ReferralEdge{}
	}

	rows, err := r.ledger.Select(ctx, gateway.TableReferralEdges, gateway.Filter{
		"ancestor_id": gateway.Eq(id.ID),
		"depth":       gateway.Lt(strconv.Itoa(maxDepth)),
	})
	if err != nil {
		r.logger.WithError(err).Debug("referral tree read failed, returning empty team")
		return []types.ReferralEdge{}
	}

	edges := make([]types.ReferralEdge, 0, len(rows))
	for _, row := range rows {
		descendant, ok := row.Str("descendant_id")
		if !ok {
			continue
		}
		depth, ok := row.Int("depth")
		if !ok || depth < 1 || depth >= maxDepth {
			// The filter already bounds depth remotely; skip anything
			// out of range that slips through.
			continue
		}
		edges = append(edges, types.ReferralEdge{
			DescendantID: descendant,
			Depth:        depth,
		})
	}
	return edges
}
