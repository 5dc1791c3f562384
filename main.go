package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	apirest "github.com/kurohane/tenka/api/rest"
	"github.com/kurohane/tenka/cache"
	"github.com/kurohane/tenka/config"
	dbadapter "github.com/kurohane/tenka/db"
	"github.com/kurohane/tenka/model"
	"github.com/kurohane/tenka/scheduler"
	"github.com/kurohane/tenka/sim"
	"github.com/kurohane/tenka/worldgen"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	store := model.NewStore(db)
	logger.Info("DB initialized")

	// ---- Cache / PubSub ----
	c, err := cache.NewCache(cfg.Cache)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cfg.Cache)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- World: resume the save or generate a fresh scenario ----
	w, err := store.Load(logger)
	switch {
	case err == nil:
		logger.Info("world loaded from save", zap.String("date", w.Date.String()))
	case errors.Is(err, model.ErrNoSave):
		seed := cfg.Scenario.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		gen := worldgen.Default(seed)
		gen.Width = cfg.Scenario.Width
		gen.Height = cfg.Scenario.Height
		gen.Countries = cfg.Scenario.Countries
		gen.CastlesPerCountry = cfg.Scenario.CastlesPerCountry
		gen.VassalsPerCastle = cfg.Scenario.VassalsPerCastle
		gen.Logger = logger
		w, err = worldgen.Generate(gen)
		if err != nil {
			log.Fatalf("worldgen: %v", err)
		}
	default:
		log.Fatalf("load world: %v", err)
	}

	// ---- Simulation ----
	s := sim.New(sim.Config{
		World:       w,
		Logger:      logger,
		Sink:        cache.NewSink(c, pubsub, logger),
		DayInterval: time.Duration(cfg.Sim.DayIntervalMs) * time.Millisecond,
		BattlePace:  time.Duration(cfg.Sim.BattlePaceMs) * time.Millisecond,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		s.Run(ctx)
	}()

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.RegisterAutoSave(s, store, time.Duration(cfg.Sim.SaveIntervalS)*time.Second)
	sched.RegisterRankingSync(c, store, []string{"country:power"}, time.Minute)

	// ---- HTTP ----
	router := apirest.NewRouter(apirest.Deps{
		Sim:    s,
		Store:  store,
		Cache:  c,
		PubSub: pubsub,
		Cfg:    cfg,
		Logger: logger,
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	// The loop has exited; save the final state directly.
	<-simDone
	if err := store.Save(s.W); err != nil {
		logger.Error("final save failed", zap.Error(err))
	} else {
		logger.Info("world saved", zap.String("date", s.W.Date.String()))
	}
}
