package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-portfolio-tracker/config"
	"github.com/oksasatya/go-portfolio-tracker/internal/application"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	pginfra "github.com/oksasatya/go-portfolio-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/go-portfolio-tracker/pkg/helpers"
)

// Seeds a demo user with a few trades. Safe to rerun: the user is reused and
// trades are only recorded when the ledger is empty.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	portfolio := pginfra.NewPortfolioRepository(pool)
	jwt := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cfg.AppName)
	auth := application.NewAuthService(users, jwt, nil, logger)
	txs := application.NewTransactionService(portfolio, users, nil, nil, logger)

	email := "demo@example.com"
	password := "password123"

	tok, err := auth.Register(ctx, email, password)
	if apperror.Is(err, apperror.KindDuplicateUser) {
		tok, err = auth.Login(ctx, email, password)
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", tok.UserID, email, password)

	existing, err := txs.ListTransactions(ctx, tok.UserID)
	if err != nil {
		log.Fatalf("failed to read ledger: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("ledger already has %d transactions; skipping trades\n", len(existing))
		return
	}

	trades := []struct{ symbol, qty, price string }{
		{"BTC", "0.5", "60000"},
		{"ETH", "4", "3000"},
		{"AAPL", "10", "190.25"},
		{"ETH", "-1.5", "3200"},
	}
	for _, tr := range trades {
		tx, err := txs.CreateTransaction(ctx, tok.UserID, tr.symbol, decimal.RequireFromString(tr.qty), decimal.RequireFromString(tr.price))
		if err != nil {
			log.Fatalf("failed to seed trade %s %s: %v", tr.symbol, tr.qty, err)
		}
		fmt.Printf("recorded %s %s @ %s (id=%s)\n", tx.Symbol, tx.Quantity, tx.Price, tx.ID)
	}
}
