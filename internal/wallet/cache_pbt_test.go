package wallet

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/wallet-sync/internal/gateway"
)

func TestWithdrawArithmeticProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("withdraw deducts amount and reports a 5% fee", prop.ForAll(
		func(balance, amount float64) bool {
			if amount > balance {
				balance, amount = amount, balance
			}
			if amount <= 0 {
				return true
			}

			ledger := newFakeLedger()
			cache := newTestCache("user-1", ledger)
			setBalance(cache, balance)

			result := cache.Withdraw(amount)
			if result == nil {
				return false
			}
			cache.Wait()

			inserts := ledger.insertCalls()
			if len(inserts) != 1 {
				return false
			}
			fee, _ := inserts[0].record["fee"].(float64)
			return result.Balance == balance-amount && fee == amount*0.05
		},
		gen.Float64Range(0.01, 1e9),
		gen.Float64Range(0.01, 1e9),
	))

	properties.Property("withdraw above balance never mutates state", prop.ForAll(
		func(balance, excess float64) bool {
			ledger := newFakeLedger()
			cache := newTestCache("user-1", ledger)
			setBalance(cache, balance)

			if result := cache.Withdraw(balance + excess); result != nil {
				return false
			}
			cache.Wait()
			return cache.GetSync().Balance == balance && len(ledger.patchCalls()) == 0
		},
		gen.Float64Range(0, 1e9),
		gen.Float64Range(0.01, 1e9),
	))

	properties.Property("deposits are strictly additive", prop.ForAll(
		func(amounts []float64) bool {
			ledger := newFakeLedger()
			cache := newTestCache("user-1", ledger)

			expected := 0.0
			for _, amount := range amounts {
				cache.RecordDeposit(amount)
				expected += amount
			}
			cache.Wait()
			return cache.GetSync().Balance == expected
		},
		gen.SliceOf(gen.Float64Range(0.01, 1e6)),
	))

	properties.TestingRun(t)
}

func TestRefreshOverwriteProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("refresh always wins wholesale over local state", prop.ForAll(
		func(local, remote float64) bool {
			ledger := newFakeLedger()
			ledger.selectRows[gateway.TableWalletBalances] = []gateway.Row{
				{"usdt_balance": remote},
			}
			cache := newTestCache("user-1", ledger)
			setBalance(cache, local)

			state := cache.GetAsync(context.Background())
			return state.Balance == remote
		},
		gen.Float64Range(0, 1e9),
		gen.Float64Range(0, 1e9),
	))

	properties.TestingRun(t)
}
