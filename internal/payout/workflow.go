// Package payout manages payout-address records and withdrawal requests
// against the remote ledger. Unlike the wallet cache's optimistic paths,
// the explicit write operations here surface remote rejections to the
// caller and mutate no local state.
package payout

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/wallet-sync/internal/errors"
	"github.com/wallet-sync/internal/gateway"
	"github.com/wallet-sync/internal/identity"
	"github.com/wallet-sync/internal/logging"
	"github.com/wallet-sync/internal/types"
)

// LedgerGateway is the remote ledger surface the workflow depends on
type LedgerGateway interface {
	Select(ctx context.Context, table string, filter gateway.Filter) ([]gateway.Row, error)
	Insert(ctx context.Context, table string, record gateway.Row) (gateway.Row, error)
}

// WithdrawInput is the caller-supplied withdrawal request. Fee is taken
// verbatim when set and defaults to 0; this path never computes a fee,
// unlike the wallet cache's Withdraw which always charges 5%.
type WithdrawInput struct {
	Currency types.Currency
	Network  types.Network
	Address  string
	Amount   float64
	Fee      *float64
}

// Workflow creates and lists payout records for the current identity
type Workflow struct {
	identity identity.Provider
	ledger   LedgerGateway
	logger   *logging.Logger

	background sync.WaitGroup
}

// NewWorkflow creates a new payout workflow
func NewWorkflow(idp identity.Provider, ledger LedgerGateway, logger *logging.Logger) *Workflow {
	return &Workflow{
		identity: idp,
		ledger:   ledger,
		logger:   logger,
	}
}

// ListPayoutAddresses returns all payout addresses for the current identity
// verbatim. An absent identity or a failed read yields an empty list.
func (w *Workflow) ListPayoutAddresses(ctx context.Context) []types.PayoutAddress {
	id, ok := w.identity.CurrentUser()
	if !ok {
		return []types.PayoutAddress{}
	}

	rows, err := w.ledger.Select(ctx, gateway.TablePayoutAddresses, gateway.Filter{
		"user_id": gateway.Eq(id.ID),
	})
	if err != nil {
		w.logger.WithError(err).Debug("payout address list read failed, returning empty list")
		return []types.PayoutAddress{}
	}

	addresses := make([]types.PayoutAddress, 0, len(rows))
	for _, row := range rows {
		addresses = append(addresses, payoutAddressFromRow(row))
	}
	return addresses
}

// AddPayoutAddress creates a payout address row. Currency and network are
// lowercased before the write. Fails with an unauthenticated error when no
// identity is set, and with a remote-rejected error carrying the server's
// response body on a non-success response.
func (w *Workflow) AddPayoutAddress(ctx context.Context, currency, network, address string) (types.PayoutAddress, error) {
	id, ok := w.identity.CurrentUser()
	if !ok {
		return types.PayoutAddress{}, errors.NewUnauthenticatedError("addPayoutAddress")
	}

	currency = strings.ToLower(currency)
	network = strings.ToLower(network)

	if !ValidAddress(types.Network(network), address) {
		// Advisory only. The remote ledger stays the authority on what
		// it accepts.
		w.logger.WithFields(map[string]interface{}{
			"network": network,
			"address": address,
		}).Warn("payout address failed format check, sending anyway")
	}

	row, err := w.ledger.Insert(ctx, gateway.TablePayoutAddresses, gateway.Row{
		"user_id":  id.ID,
		"currency": currency,
		"network":  network,
		"address":  address,
	})
	if err != nil {
		return types.PayoutAddress{}, err
	}
	return payoutAddressFromRow(row), nil
}

// RequestWithdraw creates a withdrawal request row and returns it. Fails
// with an unauthenticated error when no identity is set and with a
// remote-rejected error on a non-success response.
func (w *Workflow) RequestWithdraw(ctx context.Context, input WithdrawInput) (types.WithdrawRequest, error) {
	id, ok := w.identity.CurrentUser()
	if !ok {
		return types.WithdrawRequest{}, errors.NewUnauthenticatedError("requestWithdraw")
	}

	fee := 0.0
	if input.Fee != nil {
		fee = *input.Fee
	}

	row, err := w.ledger.Insert(ctx, gateway.TableWithdrawRequests, gateway.Row{
		"user_id":  id.ID,
		"currency": string(input.Currency),
		"network":  string(input.Network),
		"address":  input.Address,
		"amount":   input.Amount,
		"fee":      fee,
	})
	if err != nil {
		return types.WithdrawRequest{}, err
	}
	return withdrawRequestFromRow(row, id.ID), nil
}

// SubmitDepositTx records that a transaction hash was reported, without
// crediting any value; the deposit-ledger row carries amount 0 and crediting
// is a separate step. The write is fire-and-forget; an absent identity or an
// empty hash makes the call a no-op.
func (w *Workflow) SubmitDepositTx(txHash string, network types.Network, currency types.Currency) {
	id, ok := w.identity.CurrentUser()
	if !ok || txHash == "" {
		return
	}

	w.background.Add(1)
	go func() {
		defer w.background.Done()
		_, err := w.ledger.Insert(context.Background(), gateway.TableDepositLedger, gateway.Row{
			"user_id":  id.ID,
			"tx_hash":  txHash,
			"network":  string(network),
			"currency": string(currency),
			"provider": "manual",
			"status":   "confirmed",
			"amount":   0,
		})
		if err != nil {
			w.logger.WithError(err).Warn("background deposit-tx report failed")
		}
	}()
}

// Wait blocks until all outstanding background writes have finished
func (w *Workflow) Wait() {
	w.background.Wait()
}

// ValidAddress reports whether address looks plausible for network. It is a
// client-side sanity check for UI use; write paths only log on failure.
func ValidAddress(network types.Network, address string) bool {
	switch network {
	case types.NetworkERC20, types.NetworkBEP20:
		return common.IsHexAddress(address)
	case types.NetworkTRC20:
		return len(address) == 34 && strings.HasPrefix(address, "T")
	default:
		return false
	}
}

func payoutAddressFromRow(row gateway.Row) types.PayoutAddress {
	address := types.PayoutAddress{}
	if currency, ok := row.Str("currency"); ok {
		address.Currency = types.Currency(currency)
	}
	if network, ok := row.Str("network"); ok {
		address.Network = types.Network(network)
	}
	if addr, ok := row.Str("address"); ok {
		address.Address = addr
	}
	if locked, ok := row.Bool("is_locked"); ok {
		address.IsLocked = locked
	}
	if lockedAt, ok := row.Str("locked_at"); ok && lockedAt != "" {
		if t, err := time.Parse(time.RFC3339, lockedAt); err == nil {
			address.LockedAt = &t
		}
	}
	return address
}

func withdrawRequestFromRow(row gateway.Row, userID string) types.WithdrawRequest {
	request := types.WithdrawRequest{UserID: userID}
	if id, ok := row.Str("user_id"); ok {
		request.UserID = id
	}
	if currency, ok := row.Str("currency"); ok {
		request.Currency = types.Currency(currency)
	}
	if network, ok := row.Str("network"); ok {
		request.Network = types.Network(network)
	}
	if address, ok := row.Str("address"); ok {
		request.Address = address
	}
	if amount, ok := row.Num("amount"); ok {
		request.Amount = amount
	}
	if fee, ok := row.Num("fee"); ok {
		request.Fee = fee
	}
	return request
}
