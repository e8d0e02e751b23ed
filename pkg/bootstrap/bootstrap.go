// Package bootstrap builds the collaborators shared by the HTTP server and
// the lambdas from a loaded configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/escrow-marketplace/pkg/config"
	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/gateway"
	"github.com/chris/escrow-marketplace/pkg/logging"
	"github.com/chris/escrow-marketplace/pkg/metrics"
	"github.com/chris/escrow-marketplace/pkg/notify"
	"github.com/chris/escrow-marketplace/pkg/rabbitmq"
	"github.com/chris/escrow-marketplace/pkg/scheduler"
	"github.com/chris/escrow-marketplace/pkg/service"
	"github.com/chris/escrow-marketplace/pkg/storage"
	dydbstore "github.com/chris/escrow-marketplace/pkg/storage/dynamodb"
	"github.com/chris/escrow-marketplace/pkg/storage/memory"
	"github.com/chris/escrow-marketplace/pkg/tiers"
	"github.com/chris/escrow-marketplace/pkg/websockets"
)

// Runtime holds what every binary needs before it builds the service.
type Runtime struct {
	Config  config.Config
	Logger  *slog.Logger
	Store   storage.Storage
	Catalog *tiers.Catalog

	// AWS is nil for the memory backend.
	AWS *aws.Config
}

// Open loads configuration from dir and connects to the configured store.
func Open(ctx context.Context, dir string) (*Runtime, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{
		Level:         cfg.LogLevel,
		Format:        cfg.LogFormat,
		IncludeCaller: cfg.LogIncludeCaller,
	})
	slog.SetDefault(logger)

	catalog, err := Catalog(cfg)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, Logger: logger, Catalog: catalog}
	switch cfg.StorageBackend {
	case config.BackendMemory:
		store := memory.New()
		if cfg.MemorySeedUsers != "" {
			if err := store.LoadUsers(cfg.MemorySeedUsers); err != nil {
				return nil, err
			}
		}
		rt.Store = store
	default:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to load SDK config: %w", err)
		}
		rt.AWS = &awsCfg
		rt.Store = dydbstore.New(dynamodb.NewFromConfig(awsCfg),
			cfg.EscrowsTable, cfg.UsersTable, cfg.DisputesTable, cfg.ConnectionsTable)
	}

	logger.Info("runtime ready",
		"storage_backend", cfg.StorageBackend,
		"tiers", len(catalog.Tiers()),
	)
	return rt, nil
}

// Catalog loads the tier catalog file, or the built-in tiers when none is configured.
func Catalog(cfg config.Config) (*tiers.Catalog, error) {
	if cfg.TierCatalogPath == "" {
		return tiers.DefaultCatalog(), nil
	}
	return tiers.LoadCatalog(cfg.TierCatalogPath)
}

// Scheduler returns the SQS scheduler when a queue is configured. Otherwise
// deadlines are only picked up by the overdue sweep.
func (rt *Runtime) Scheduler() scheduler.Scheduler {
	if rt.AWS == nil || rt.Config.SQSQueueURL == "" {
		return scheduler.NoOpScheduler{}
	}
	return scheduler.NewSQSScheduler(sqs.NewFromConfig(*rt.AWS), rt.Config.SQSQueueURL)
}

// Publisher returns the API Gateway publisher for DynamoDB deployments with a
// WebSocket endpoint. local is used otherwise; it may be nil.
func (rt *Runtime) Publisher(local websockets.Publisher) websockets.Publisher {
	if rt.AWS != nil && rt.Config.WebSocketAPIEndpoint != "" {
		return websockets.NewPublisher(*rt.AWS, rt.Store, rt.Store, rt.Config.WebSocketAPIEndpoint, rt.Logger)
	}
	if local != nil {
		return local
	}
	return &websockets.NoOpPublisher{}
}

// Producer connects to RabbitMQ, falling back to a logging no-op when the
// broker is not configured or unreachable.
func (rt *Runtime) Producer() rabbitmq.Publisher {
	if rt.Config.RabbitMQURL == "" {
		return &rabbitmq.EventProducerFallback{Logger: rt.Logger}
	}
	producer, err := rabbitmq.NewEventProducer(rt.Config.RabbitMQURL, rt.Logger)
	if err != nil {
		rt.Logger.Warn("rabbitmq unavailable, events will not be published", "error", err)
		return &rabbitmq.EventProducerFallback{Logger: rt.Logger}
	}
	return producer
}

// Dispatcher fans events out to the WebSocket and RabbitMQ sinks.
func (rt *Runtime) Dispatcher(publisher websockets.Publisher, producer rabbitmq.Publisher) *notify.Dispatcher {
	return notify.NewDispatcher(rt.Logger, 0,
		&notify.WebSocketSink{Publisher: publisher},
		&notify.AMQPSink{Producer: producer, Exchange: rt.Config.NotificationExchange},
	)
}

// ServiceOptions are the parts of the service that differ per binary.
type ServiceOptions struct {
	Scheduler scheduler.Scheduler
	Notifier  notify.Notifier
	Metrics   metrics.Recorder
}

// Service builds the escrow service on top of the runtime.
func (rt *Runtime) Service(opts ServiceOptions) *service.Service {
	client := gateway.NewClient(rt.Config.PaymentGatewayURL, rt.Config.PaymentGatewaySecret, rt.Logger)
	return service.New(service.Config{
		Store:     rt.Store,
		Catalog:   rt.Catalog,
		Machine:   escrow.NewMachine(rt.Config.AutoReleaseAfter),
		Payments:  client,
		Payouts:   client,
		Scheduler: opts.Scheduler,
		Notifier:  opts.Notifier,
		Metrics:   opts.Metrics,
		Logger:    rt.Logger,
	})
}
