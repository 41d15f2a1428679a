package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"

	"streetbite/internal/cache"
	"streetbite/internal/config"
	"streetbite/internal/database"
	"streetbite/internal/handler"
	"streetbite/internal/metrics"
	"streetbite/internal/queue"
	"streetbite/internal/redis"
	"streetbite/internal/repository"
	"streetbite/internal/service"
	"streetbite/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// Run wires every dependency, serves HTTP and blocks until SIGINT/SIGTERM.
// External clients are created once here and closed on the way out.
func Run() error {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	metrics.Register()

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Redis (live store and engagement stream)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.LiveStore == config.LiveStoreRedis {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			log.Printf("[Server] Redis unavailable, engagement queue disabled: %v", err)
		} else {
			defer redisClient.Close()
		}
	}

	// 4. Firebase (FCM and Firestore share one app)
	var firebaseApp *firebase.App
	needsFirebase := cfg.PushProvider == config.PushProviderFCM || cfg.LiveStore == config.LiveStoreFirestore
	if needsFirebase {
		if cfg.FirebaseConfigured() {
			firebaseApp, err = service.NewFirebaseApp(ctx, cfg.FirebaseProjectID, cfg.FirebaseClientEmail, cfg.FirebasePrivateKey)
			if err != nil {
				return err
			}
		} else {
			log.Println("[Server] Firebase credentials missing, FCM and Firestore disabled")
		}
	}

	provider, err := newPushProvider(ctx, cfg, firebaseApp)
	if err != nil {
		return err
	}

	store, closeStore, err := newLiveStore(ctx, cfg, firebaseApp, redisClient)
	if err != nil {
		return err
	}
	defer closeStore()

	// 5. Repositories
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	menuRepo := repository.NewMenuItemRepository(db)
	tokenRepo := repository.NewDeviceTokenRepository(db)

	// 6. Services
	registry := service.NewDeviceRegistry(tokenRepo)
	dispatcher := service.NewDispatcher(provider, cfg.PushTimeout)
	dispatcher.SetTokenPruner(registry)

	orderService := service.NewOrderService(orderRepo, userRepo, vendorRepo, registry, dispatcher)
	syncBridge := service.NewSyncBridge(store, cfg.SyncTimeout)
	vendorService := service.NewVendorService(vendorRepo, menuRepo, syncBridge)
	ledger := service.NewEngagementLedger(userRepo, cfg.StreakLocation)

	// 7. Engagement workers
	var publisher handler.EventPublisher
	if redisClient != nil {
		publisher = queue.NewPublisher(redisClient.Client)

		manager := worker.NewManager(
			queue.NewEngagementConsumer(redisClient.Client),
			worker.NewHandler(ledger),
			worker.ManagerConfig{WorkerCount: cfg.EngagementWorkers},
		)
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start engagement workers: %w", err)
		}
		defer manager.Stop()
	}

	// 8. Setup Server
	router := NewRouter(RouterConfig{
		OrderHandler:        handler.NewOrderHandler(orderService),
		NotificationHandler: handler.NewNotificationHandler(registry, dispatcher),
		VendorHandler:       handler.NewVendorHandler(vendorService),
		EngagementHandler:   handler.NewEngagementHandler(ledger, publisher),
		JWTSecret:           cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("[Server] Shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on :%s (push=%s live_store=%s)", cfg.ServerPort, cfg.PushProvider, cfg.LiveStore)
	if err := server.ListenAndServe(); !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}

	log.Println("Server stopped gracefully")
	return nil
}

// newPushProvider returns nil when push is disabled.
func newPushProvider(ctx context.Context, cfg *config.Config, app *firebase.App) (service.PushProvider, error) {
	switch cfg.PushProvider {
	case config.PushProviderFCM:
		if app == nil {
			return nil, nil
		}
		client, err := service.NewFCMClient(ctx, app)
		if err != nil {
			return nil, err
		}
		log.Println("[Server] Push provider: FCM")
		return client, nil
	case config.PushProviderExpo:
		log.Println("[Server] Push provider: Expo")
		return service.NewExpoPushClient(), nil
	default:
		log.Println("[Server] Push disabled")
		return nil, nil
	}
}

// newLiveStore returns nil when live sync is disabled. The close func is never nil.
func newLiveStore(ctx context.Context, cfg *config.Config, app *firebase.App, rc *redis.Client) (service.DocumentStore, func(), error) {
	noop := func() {}

	switch cfg.LiveStore {
	case config.LiveStoreFirestore:
		if app == nil {
			return nil, noop, nil
		}
		store, err := cache.NewFirestoreLiveStore(ctx, app)
		if err != nil {
			return nil, noop, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("[Server] Close firestore: %v", err)
			}
		}, nil
	case config.LiveStoreRedis:
		log.Println("[Server] Live store: Redis")
		return cache.NewRedisLiveStore(rc.Client), noop, nil
	default:
		log.Println("[Server] Live sync disabled")
		return nil, noop, nil
	}
}
