// Package wallet maintains the client-held optimistic view of a user's
// wallet. Local mutations apply immediately; remote mirroring happens on a
// best-effort, fire-and-forget basis and is reconciled by the next refresh.
package wallet

import (
	"context"
	"math"
	"strconv"
	"sync"

	"github.com/wallet-sync/internal/gateway"
	"github.com/wallet-sync/internal/identity"
	"github.com/wallet-sync/internal/logging"
	"github.com/wallet-sync/internal/store"
	"github.com/wallet-sync/internal/types"
)

// withdrawFeeRate is the automatic fee charged by Withdraw. The fee is
// reported to the remote side; the local deduction is the amount alone.
const withdrawFeeRate = 0.05

// LedgerGateway is the remote ledger surface the cache depends on
type LedgerGateway interface {
	Select(ctx context.Context, table string, filter gateway.Filter) ([]gateway.Row, error)
	Insert(ctx context.Context, table string, record gateway.Row) (gateway.Row, error)
	Patch(ctx context.Context, table string, filter gateway.Filter, fields gateway.Row) error
}

// Cache is the in-memory optimistic wallet state for one session.
//
// The mutex makes individual reads and writes atomic; it does not serialize
// whole operations against each other. Refresh overwrites balance and
// reserved wholesale with no versioning, so a refresh carrying pre-mutation
// remote state can clobber an optimistic mutation that has not landed
// remotely yet. That reconciliation model is deliberate.
type Cache struct {
	identity  identity.Provider
	ledger    LedgerGateway
	store     store.Store
	incomeKey string
	logger    *logging.Logger

	mu    sync.Mutex
	state types.WalletState

	background sync.WaitGroup
}

// NewCache creates the wallet cache for the current session and rehydrates
// the lifetime income counter from the durable store. Callers should invoke
// Refresh once at startup; the cache never refreshes on its own.
func NewCache(idp identity.Provider, ledger LedgerGateway, st store.Store, incomeKey string, logger *logging.Logger) *Cache {
	c := &Cache{
		identity:  idp,
		ledger:    ledger,
		store:     st,
		incomeKey: incomeKey,
		logger:    logger,
	}

	if raw, ok, err := st.Get(context.Background(), incomeKey); err != nil {
		logger.WithError(err).Warn("failed to rehydrate income counter")
	} else if ok {
		if total, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil {
			c.state.TotalIncome = total
		} else {
			logger.WithField("value", raw).Warn("ignoring unparsable persisted income counter")
		}
	}

	return c
}

// Refresh reconciles the cache with the remote ledger row for the current
// identity. Balance and reserved are overwritten from the row; missing or
// non-numeric fields are left untouched. Any read failure leaves the cache
// unchanged and is never surfaced to the caller.
func (c *Cache) Refresh(ctx context.Context) {
	id, ok := c.identity.CurrentUser()
	if !ok {
		return
	}

	rows, err := c.ledger.Select(ctx, gateway.TableWalletBalances, gateway.Filter{
		"user_id": gateway.Eq(id.ID),
	})
	if err != nil {
		c.logger.WithError(err).Debug("wallet refresh failed, keeping cached state")
		return
	}
	if len(rows) == 0 {
		return
	}

	row := rows[0]
	c.mu.Lock()
	defer c.mu.Unlock()
	if balance, ok := row.Num("usdt_balance"); ok {
		c.state.Balance = balance
	}
	if reserved, ok := row.Num("reserved_balance"); ok {
		c.state.Reserved = reserved
	}
}

// GetSync returns the current cache snapshot by value. It never blocks and
// never touches the network.
func (c *Cache) GetSync() types.WalletState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// GetAsync refreshes and then returns the snapshot. When the refresh fails
// the stale snapshot is returned silently.
func (c *Cache) GetAsync(ctx context.Context) types.WalletState {
	c.Refresh(ctx)
	return c.GetSync()
}

// RecordDeposit credits the cached balance immediately and mirrors the new
// absolute balance to the remote ledger in the background. Non-positive or
// non-finite amounts are ignored.
func (c *Cache) RecordDeposit(amount float64) {
	if !validAmount(amount) {
		return
	}
	id, ok := c.identity.CurrentUser()
	if !ok {
		return
	}

	c.mu.Lock()
	c.state.Balance += amount
	newBalance := c.state.Balance
	c.mu.Unlock()

	c.mirrorBalance(id.ID, newBalance)
}

// Withdraw optimistically deducts amount from the cached balance and returns
// the post-deduction snapshot, without waiting for the remote mirroring or
// the withdraw-request creation to complete. The remote side is told a fee
// of 5% of amount; the local deduction is the amount alone. Returns nil on
// invalid amounts or insufficient balance, leaving the cache unchanged.
func (c *Cache) Withdraw(amount float64) *types.WalletState {
	if !validAmount(amount) {
		return nil
	}
	id, ok := c.identity.CurrentUser()
	if !ok {
		return nil
	}

	c.mu.Lock()
	if amount > c.state.Balance {
		c.mu.Unlock()
		return nil
	}
	fee := amount * withdrawFeeRate
	c.state.Balance -= amount
	snapshot := c.state
	c.mu.Unlock()

	c.mirrorBalance(id.ID, snapshot.Balance)
	c.spawn(func(ctx context.Context) {
		_, err := c.ledger.Insert(ctx, gateway.TableWithdrawRequests, gateway.Row{
			"user_id":  id.ID,
			"currency": string(types.CurrencyUSDT),
			"network":  string(types.NetworkTRC20),
			"address":  "",
			"amount":   amount,
			"fee":      fee,
		})
		if err != nil {
			c.logger.WithError(err).Warn("background withdraw-request creation failed")
		}
	})

	return &snapshot
}

// AddIncome adds n to the lifetime income counter and persists the new total
// synchronously. Non-positive or non-finite n counts as 1. Purely local.
func (c *Cache) AddIncome(ctx context.Context, n float64) {
	if !validAmount(n) {
		n = 1
	}

	c.mu.Lock()
	c.state.TotalIncome += n
	newTotal := c.state.TotalIncome
	c.mu.Unlock()

	if err := c.store.Set(ctx, c.incomeKey, strconv.FormatFloat(newTotal, 'f', -1, 64)); err != nil {
		c.logger.WithError(err).Warn("failed to persist income counter")
	}
}

// Wait blocks until all outstanding background writes have finished. Callers
// never need it for correctness; tests and graceful shutdown use it to drain
// fire-and-forget work.
func (c *Cache) Wait() {
	c.background.Wait()
}

// mirrorBalance fires a background write of the new absolute balance. A
// failure keeps the local cache ahead of the remote ledger until the next
// refresh reconciles it, or forever if the write never lands.
func (c *Cache) mirrorBalance(userID string, balance float64) {
	c.spawn(func(ctx context.Context) {
		err := c.ledger.Patch(ctx, gateway.TableWalletBalances, gateway.Filter{
			"user_id": gateway.Eq(userID),
		}, gateway.Row{
			"usdt_balance": balance,
		})
		if err != nil {
			c.logger.WithError(err).Warn("background balance mirror failed")
		}
	})
}

// spawn runs fn detached from the caller. Background writes get a fresh
// context: no cancellation or timeout is ever applied to outstanding remote
// operations beyond the gateway's own client timeout.
func (c *Cache) spawn(fn func(ctx context.Context)) {
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		fn(context.Background())
	}()
}

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}
