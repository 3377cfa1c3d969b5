package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"mutual-credit-ledger/config"
	pgStorage "mutual-credit-ledger/internal/adapter/storage/postgres"
	"mutual-credit-ledger/internal/service"
	"mutual-credit-ledger/pkg/logger"
)

const usage = `Usage: admin <command> [args]

Commands:
  add-account <name> <password>   create an account directly in the database
  list-accounts                   print all accounts with balances and counters
  integrity                       verify the pool-wide balance sum is zero
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("ledger-admin", "warn", false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	accountRepo := pgStorage.NewAccountRepo(pool)

	switch os.Args[1] {
	case "add-account":
		if len(os.Args) != 4 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		authSvc := service.NewAuthService(accountRepo, service.NewArgon2HashService(), nil)
		account, err := authSvc.Register(ctx, os.Args[2], os.Args[3])
		if err != nil {
			fmt.Fprintf(os.Stderr, "add-account: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created account %d (%s)\n", account.ID, account.Name)

	case "list-accounts":
		accounts, err := accountRepo.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list-accounts: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%-12s %-20s %10s %10s %10s\n", "ID", "NAME", "BALANCE", "RECEIVED", "SENT")
		for _, a := range accounts {
			fmt.Printf("%-12d %-20s %10d %10d %10d\n", a.ID, a.Name, a.Balance, a.Received, a.Sent)
		}

	case "integrity":
		sum, err := accountRepo.SumBalances(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "integrity: %v\n", err)
			os.Exit(1)
		}
		if sum != 0 {
			fmt.Fprintf(os.Stderr, "LEDGER CORRUPT: balance sum is %d, expected 0\n", sum)
			os.Exit(1)
		}
		fmt.Println("ok: balance sum is 0")

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}
