package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/shopsim/internal/config"
	"github.com/mamadbah2/shopsim/internal/repository"
	"github.com/mamadbah2/shopsim/internal/repository/file"
	"github.com/mamadbah2/shopsim/internal/repository/memory"
	"github.com/mamadbah2/shopsim/internal/repository/mongodb"
	redisrepo "github.com/mamadbah2/shopsim/internal/repository/redis"
	"github.com/mamadbah2/shopsim/internal/repository/sheets"
	"github.com/mamadbah2/shopsim/internal/scheduler"
	"github.com/mamadbah2/shopsim/internal/server/handlers"
	"github.com/mamadbah2/shopsim/internal/server/router"
	cartsvc "github.com/mamadbah2/shopsim/internal/service/cart"
	catalogsvc "github.com/mamadbah2/shopsim/internal/service/catalog"
	checkoutsvc "github.com/mamadbah2/shopsim/internal/service/checkout"
	commandsvc "github.com/mamadbah2/shopsim/internal/service/commands"
	reportingsvc "github.com/mamadbah2/shopsim/internal/service/reporting"
	"github.com/mamadbah2/shopsim/internal/storage/cartstore"
	catalogclient "github.com/mamadbah2/shopsim/pkg/clients/catalog"
	"github.com/mamadbah2/shopsim/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level, cfg.Log.Format))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mongoRepo *mongodb.MongoDBRepository
	if cfg.UsesMongoDB() {
		mongoRepo, err = mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
	}

	backend, closeBackend, err := newCartBackend(ctx, cfg, mongoRepo)
	if err != nil {
		baseLogger.Fatal("failed to init cart store", zap.Error(err), zap.String("backend", cfg.Storage.Backend))
	}
	defer closeBackend()

	archive, err := newReceiptArchive(ctx, cfg, mongoRepo, baseLogger.Named("repo.receipts"))
	if err != nil {
		baseLogger.Fatal("failed to init receipt archive", zap.Error(err), zap.String("archive", cfg.Checkout.ReceiptArchive))
	}

	catalogSvc := catalogsvc.NewService(
		catalogclient.NewSource(cfg.Catalog.Source, cfg.Catalog.Timeout),
		baseLogger.Named("svc.catalog"),
	)
	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Catalog.Timeout)
	if err := catalogSvc.Load(loadCtx); err != nil {
		// the page keeps working with an empty catalog and shows a notice
		baseLogger.Warn("continuing with empty catalog", zap.String("source", cfg.Catalog.Source))
	}
	cancelLoad()

	store := cartstore.New(backend, cfg.Storage.Key, baseLogger.Named("store.cart"))
	cartManager := cartsvc.NewManager(ctx, store, catalogSvc, baseLogger.Named("svc.cart"))
	dispatcher := commandsvc.NewService(cartManager, baseLogger.Named("svc.commands"))
	checkoutFlow := checkoutsvc.NewFlow(
		cartManager,
		catalogSvc,
		checkoutsvc.NewSimulatedGateway(cfg.Checkout.PaymentDelay),
		archive,
		baseLogger.Named("svc.checkout"),
	)

	deps := handlers.Dependencies{
		Catalog:  catalogSvc,
		Cart:     cartManager,
		Intents:  dispatcher,
		Checkout: checkoutFlow,
	}
	engine, err := router.New(
		handlers.NewShopHandler(deps, baseLogger.Named("handlers.shop")),
		handlers.NewAPIHandler(deps, baseLogger.Named("handlers.api")),
		baseLogger.Named("router"),
	)
	if err != nil {
		baseLogger.Fatal("failed to build router", zap.Error(err))
	}

	reportingSvc := reportingsvc.NewService(archive, baseLogger.Named("svc.reporting"))
	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server crashed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		baseLogger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		baseLogger.Error("server stopped with error", zap.Error(err))
	}
}

func newCartBackend(ctx context.Context, cfg *config.Config, mongoRepo *mongodb.MongoDBRepository) (repository.KeyValueStore, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case config.StoreMemory:
		return memory.NewStore(), noop, nil
	case config.StoreFile:
		store, err := file.NewStore(cfg.Storage.FilePath)
		return store, noop, err
	case config.StoreRedis:
		client, err := redisrepo.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, noop, err
		}
		return redisrepo.NewStore(client, "shopsim"), func() { _ = client.Close() }, nil
	case config.StoreMongoDB:
		return mongoRepo, noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported cart store %q", cfg.Storage.Backend)
	}
}

func newReceiptArchive(ctx context.Context, cfg *config.Config, mongoRepo *mongodb.MongoDBRepository, log *zap.Logger) (repository.ReceiptStore, error) {
	switch cfg.Checkout.ReceiptArchive {
	case config.ArchiveMemory:
		return memory.NewReceiptArchive(), nil
	case config.ArchiveMongoDB:
		return mongoRepo, nil
	case config.ArchiveSheets:
		client, err := sheets.NewClient(ctx, cfg.Sheets, sheets.ReceiptsRange, log)
		if err != nil {
			return nil, err
		}
		return sheets.NewReceiptArchive(client, log), nil
	default:
		return nil, fmt.Errorf("unsupported receipt archive %q", cfg.Checkout.ReceiptArchive)
	}
}
