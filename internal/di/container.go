package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/peachwood/api/internal/platform/config"
	"github.com/peachwood/api/internal/platform/events"
	"github.com/peachwood/api/internal/platform/idempotency"
	pfirestore "github.com/peachwood/api/internal/platform/firestore"
	"github.com/peachwood/api/internal/repositories"
	firestoreRepo "github.com/peachwood/api/internal/repositories/firestore"
	"github.com/peachwood/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Catalog services.CatalogService
	Orders  services.OrderService
	System  services.SystemService
}

// Repositories exposes the concrete persistence layer for tooling such as the
// seed command.
type Repositories struct {
	Products repositories.ProductRepository
	Orders   repositories.OrderRepository
}

// Container wires configuration, persistence, messaging, and services for
// runtime use.
type Container struct {
	Config       config.Config
	Firestore    *pfirestore.Provider
	Repositories Repositories
	Services     Services
	Idempotency  *idempotency.FirestoreStore

	pubsubClient *pubsub.Client
	orderTopic   *pubsub.Topic
}

// NewContainer constructs the runtime dependency graph. The Pub/Sub publisher
// is optional and only attached when an order events topic is configured.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider := pfirestore.NewProvider(cfg.Firestore)
	client, err := provider.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("di: firestore client: %w", err)
	}

	productRepo, err := firestoreRepo.NewProductRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("di: product repository: %w", err)
	}
	orderRepo, err := firestoreRepo.NewOrderRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("di: order repository: %w", err)
	}

	c := &Container{
		Config:    cfg,
		Firestore: provider,
		Repositories: Repositories{
			Products: productRepo,
			Orders:   orderRepo,
		},
		Idempotency: idempotency.NewFirestoreStore(client),
	}

	var publisher services.OrderEventPublisher
	if strings.TrimSpace(cfg.Events.Topic) != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.Events.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("di: pubsub client: %w", err)
		}
		c.pubsubClient = psClient
		c.orderTopic = psClient.Topic(cfg.Events.Topic)
		publisher, err = events.NewPubSubOrderEventPublisher(c.orderTopic)
		if err != nil {
			return nil, fmt.Errorf("di: order event publisher: %w", err)
		}
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: productRepo,
		Clock:    time.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("di: catalog service: %w", err)
	}

	orderLogger := logger.Named("orders")
	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:       orderRepo,
		Products:     productRepo,
		OrderNumbers: services.NewOrderNumberGenerator(),
		Clock:        time.Now,
		Events:       publisher,
		Logger: func(_ context.Context, event string, fields map[string]any) {
			zFields := make([]zap.Field, 0, len(fields)+1)
			zFields = append(zFields, zap.String("event", event))
			for k, v := range fields {
				zFields = append(zFields, zap.Any(k, v))
			}
			orderLogger.Debug("order log", zFields...)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("di: order service: %w", err)
	}

	healthRepo, err := newHealthRepository(client.Collections, c.orderTopic)
	if err != nil {
		return nil, fmt.Errorf("di: health repository: %w", err)
	}
	systemService, err := services.NewSystemService(services.SystemServiceDeps{
		Health:      healthRepo,
		Environment: cfg.Environment,
		StartedAt:   time.Now().UTC(),
		Clock:       time.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("di: system service: %w", err)
	}

	c.Services = Services{
		Catalog: catalogService,
		Orders:  orderService,
		System:  systemService,
	}
	return c, nil
}

// Close releases the Firestore and Pub/Sub clients.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.orderTopic != nil {
		c.orderTopic.Stop()
	}
	if c.pubsubClient != nil {
		if err := c.pubsubClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("pubsub close: %w", err))
		}
	}
	if c.Firestore != nil {
		if err := c.Firestore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("firestore close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// newHealthRepository probes the document store and, when configured, the
// order events topic.
func newHealthRepository(collections func(ctx context.Context) *firestore.CollectionIterator, topic *pubsub.Topic) (repositories.HealthRepository, error) {
	checks := []repositories.DependencyCheck{
		{
			Name:    "firestore",
			Timeout: 1500 * time.Millisecond,
			Check: func(ctx context.Context) error {
				iter := collections(ctx)
				_, err := iter.Next()
				if errors.Is(err, iterator.Done) {
					return nil
				}
				return err
			},
		},
	}
	if topic != nil {
		checks = append(checks, repositories.DependencyCheck{
			Name:    "pubsub",
			Timeout: time.Second,
			Check: func(ctx context.Context) error {
				exists, err := topic.Exists(ctx)
				if err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("topic %s does not exist", topic.ID())
				}
				return nil
			},
		})
	}
	return repositories.NewDependencyHealthRepository(checks)
}
