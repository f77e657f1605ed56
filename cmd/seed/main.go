package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/infrastructure/bootstrap"
	"github.com/attractify/onboarding/internal/infrastructure/config"
	"github.com/attractify/onboarding/internal/infrastructure/event"
	"github.com/attractify/onboarding/internal/infrastructure/logger"
)

func main() {
	var (
		count    int
		seed     uint64
		logLevel string
	)
	flag.IntVar(&count, "n", 10, "Number of demo clients to create")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	if count <= 0 {
		fmt.Fprintln(os.Stderr, "-n must be positive")
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(log)
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(clientapp.NewActivityRecorder(store, log))

	clients := clientapp.NewClientService(store, bus, log)
	if err := clients.Load(ctx); err != nil {
		log.Fatal("Failed to load clients", zap.Error(err))
	}

	s := newSeeder(gofakeit.New(seed), clients, clientapp.NewOnboardingService(clients, store), log)
	ids, err := s.seed(ctx, count)
	if err != nil {
		log.Fatal("Seeding failed", zap.Int("created", len(ids)), zap.Error(err))
	}
	log.Info("Seeding finished",
		zap.Int("created", len(ids)),
		zap.Int("total_clients", clients.Count()),
		zap.String("store", store.Driver),
	)
}
