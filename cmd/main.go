package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cleanscore-api/res/cache"
	"cleanscore-api/res/notification/slack"
	"cleanscore-api/res/payout"
	"cleanscore-api/res/payout/pix"
	"cleanscore-api/res/payout/stripe"
	"cleanscore-api/res/store/postgresql"
	"cleanscore-api/sys/incentive"
	"cleanscore-api/sys/jobs"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var logger = log.New(os.Stdout, "(cmd/main.go)", log.LstdFlags|log.LUTC|log.Llongfile)

func main() {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		logger.Printf("Note: .env file not found, using system environment variables")
	}

	port := readRequiredEnvVar("PORT")
	environment := readRequiredEnvVar("ENVIRONMENT")
	dbURL := readRequiredEnvVar("DATABASE_POSTGRES_URL")

	storeInstance, err := postgresql.Connect(dbURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	cacheInstance := cache.New(os.Getenv("REDIS_URL"), logger)
	notifier := slack.New(os.Getenv("SLACK_WEBHOOK_URL"), 10*time.Second, logger)

	var payouts payout.Gateway
	if stripeKey := os.Getenv("STRIPE_API_KEY"); stripeKey != "" {
		payouts = stripe.New(stripeKey, "brl", logger)
		logger.Printf("Using Stripe payout gateway")
	} else {
		payouts = pix.New(logger)
		logger.Printf("STRIPE_API_KEY not set, using simulated PIX payout gateway")
	}

	cfg := &incentive.Config{
		Logger:   logger,
		Store:    storeInstance,
		Cache:    cacheInstance,
		Notifier: notifier,
		Payouts:  payouts,
	}

	punishments := incentive.NewPunishmentEngine(cfg)
	rankings := incentive.NewRankingEngine(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := jobs.NewRunner(logger, punishments, rankings)
	go runner.Run(ctx)

	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	http.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: fmt.Sprintf(":%s", port)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Server shutdown: %v", err)
		}
	}()

	logger.Printf("Starting server on :%s (environment: %s)\n", port, environment)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed to start: %v", err)
	}
}

func readRequiredEnvVar(name string) string {
	val, ok := os.LookupEnv(name)
	if !ok {
		logger.Fatalf("Env variable not set: %s", name)
	}
	return val
}
