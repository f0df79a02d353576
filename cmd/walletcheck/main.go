package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/wallet-sync/internal/config"
	"github.com/wallet-sync/internal/gateway"
	"github.com/wallet-sync/internal/identity"
	"github.com/wallet-sync/internal/logging"
	"github.com/wallet-sync/internal/membership"
	"github.com/wallet-sync/internal/payout"
	"github.com/wallet-sync/internal/referral"
	"github.com/wallet-sync/internal/store"
	"github.com/wallet-sync/internal/wallet"
)

func main() {
	userFlag := flag.String("user", "", "User id to inspect")
	flag.Parse()

	if *userFlag == "" {
		fmt.Println("Usage: walletcheck -user <user-id>")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logging.InitGlobalLogger(
		logging.ParseLogLevel(cfg.Logging.Level),
		logging.ParseLogFormat(cfg.Logging.Format),
	)
	logger := logging.GetGlobalLogger()

	localStore, err := store.NewRedisStore(&cfg.Redis)
	if err != nil {
		fmt.Printf("Error connecting to local store: %v\n", err)
		os.Exit(1)
	}
	defer localStore.Close()

	idp := identity.NewStatic(*userFlag)
	ledger := gateway.NewClient(&cfg.Gateway, logger)

	cache := wallet.NewCache(idp, ledger, localStore, cfg.Income.StorageKey, logger)
	reader := referral.NewReader(idp, ledger, logger)
	resolver := membership.NewResolver(idp, ledger, cache, reader, logger)
	workflow := payout.NewWorkflow(idp, ledger, logger)

	ctx := context.Background()

	// Startup refresh; the cache never refreshes on its own
	cache.Refresh(ctx)

	state := cache.GetSync()
	fmt.Printf("Wallet for %s\n", *userFlag)
	fmt.Printf("  balance:      %.2f\n", state.Balance)
	fmt.Printf("  reserved:     %.2f\n", state.Reserved)
	fmt.Printf("  total income: %.2f\n", state.TotalIncome)

	vip := resolver.VipInfo(ctx)
	fmt.Printf("Membership\n")
	fmt.Printf("  level:     %s\n", vip.CurrentLevel)
	if vip.NextLevel != nil {
		fmt.Printf("  next:      %s\n", *vip.NextLevel)
	} else {
		fmt.Printf("  next:      (none)\n")
	}
	fmt.Printf("  activated: %v  funded: %v  locked: %v\n", vip.IsActivated, vip.IsFunded, vip.IsLocked)
	fmt.Printf("  team size: %d\n", vip.EffectiveUsers)

	addresses := workflow.ListPayoutAddresses(ctx)
	fmt.Printf("Payout addresses: %d\n", len(addresses))
	for _, addr := range addresses {
		status := ""
		if addr.IsLocked {
			status = " (locked)"
		}
		fmt.Printf("  %s/%s %s%s\n", addr.Currency, addr.Network, addr.Address, status)
	}
}
