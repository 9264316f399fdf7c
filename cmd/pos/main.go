package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/middleware"

	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/kitchen"
	"github.com/appetiteclub/pos/internal/mongo"
	"github.com/appetiteclub/pos/internal/occupancy"
	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/internal/payment"
	"github.com/appetiteclub/pos/internal/seeds"
	"github.com/appetiteclub/pos/internal/sequence"
	"github.com/appetiteclub/pos/internal/settings"
	"github.com/appetiteclub/pos/internal/tables"
	"github.com/appetiteclub/pos/pkg"
	"github.com/appetiteclub/pos/pkg/event"
)

const (
	appNamespace = "POS"
	appName      = "pos"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logger := apt.NewLogger(config.GetStringOrDef("log.level", "info"))
	cfg := settings.Load(config, logger)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	baseRepo := mongo.NewBaseRepo(config, logger)
	if err := baseRepo.Start(ctx); err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	orderRepo := mongo.NewOrderRepo(db)
	tableRepo := mongo.NewTableRepo(db)
	menuRepo := mongo.NewMenuRepo(db)
	paymentRepo := mongo.NewPaymentRepo(db)

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: baseRepo.Stop},
	}

	var generator sequence.Generator = sequence.NewMongoGenerator(db)
	if cfg.SequenceBackend == settings.SequenceRedis {
		redisGen := sequence.NewRedisGenerator(sequence.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		generator = redisGen
		lifecycles = append(lifecycles, redisGen)
		logger.Info("Using redis sequence backend", "addr", cfg.RedisAddr)
	}
	numbers := sequence.NewNumberer(generator, cfg.Location)

	pub, err := pkg.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	lifecycles = append(lifecycles, apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	})

	var displaySource events.Subscriber
	if cfg.KitchenDurable {
		stream, err := pkg.NewNATSStream(ctx, pkg.NATSStreamConfig{
			URL:          cfg.NATSURL,
			StreamName:   cfg.KitchenStream,
			Topic:        event.KitchenDisplayTopic,
			ConsumerName: cfg.KitchenConsumer,
			MaxAge:       24 * time.Hour,
			MaxDeliver:   5,
		}, logger)
		if err != nil {
			log.Fatalf("%s(%s) cannot connect to kitchen display stream: %v", appName, appVersion, err)
		}
		displaySource = stream
		lifecycles = append(lifecycles, apt.LifecycleHooks{
			OnStop: func(context.Context) error {
				return stream.Close()
			},
		})
	} else {
		sub, err := pkg.NewNATSSubscriber(cfg.NATSURL, logger)
		if err != nil {
			log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
		}
		displaySource = sub
		lifecycles = append(lifecycles, apt.LifecycleHooks{
			OnStop: func(context.Context) error {
				return sub.Close()
			},
		})
		logger.Info("Kitchen display acks consumed without JetStream, redelivery disabled")
	}

	orderEvents := order.NewEventPublisher(pub, logger)
	reconciler := occupancy.NewReconciler(tableRepo, orderRepo, pub, occupancy.Config{
		StaleAfter: cfg.StaleAfter,
	}, logger)

	orderService := order.NewService(order.ServiceDeps{
		Orders:            orderRepo,
		Menu:              menuRepo,
		Tables:            reconciler,
		Numbers:           numbers,
		Publisher:         orderEvents,
		NumberingAttempts: cfg.NumberingAttempts,
		NumberingBackoff:  cfg.NumberingBackoff,
	}, logger)

	feed := kitchen.NewFeedServer(logger)
	kitchenService := kitchen.NewService(orderRepo, tableRepo, pub, feed, logger)
	feed.SetPendingSource(kitchenService)
	displaySub := kitchen.NewDisplaySubscriber(displaySource, kitchenService, logger)
	lifecycles = append(lifecycles, displaySub)

	paymentService := payment.NewService(payment.ServiceDeps{
		Payments:  paymentRepo,
		Orders:    orderRepo,
		Tables:    reconciler,
		Directory: tableRepo,
		Numbers:   numbers,
		Publisher: orderEvents,
	}, logger)

	orderHandler := order.NewHandler(orderService, cfg.Location, logger)
	kitchenHandler := kitchen.NewHandler(kitchenService, logger)
	paymentHandler := payment.NewHandler(paymentService, logger)
	tableHandler := tables.NewHandler(tableRepo, reconciler, logger)
	maintenanceHandler := occupancy.NewHandler(reconciler, logger)

	if cfg.SeedingEnabled {
		lifecycles = append(lifecycles, apt.LifecycleHooks{
			OnStart: func(context.Context) error {
				return seeds.Apply(seedCtx, tableRepo, menuRepo, db, logger)
			},
			OnStop: func(context.Context) error {
				cancelSeeds()
				return nil
			},
		})
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true,
	})
	stack = append(stack, middleware.InternalOnly(), auth.Middleware(logger))

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", orderHandler, kitchenHandler, paymentHandler, tableHandler, maintenanceHandler),
		apt.WithGRPCServerModules("grpc.port", feed),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
