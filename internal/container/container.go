package container

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-portfolio-tracker/config"
	"github.com/oksasatya/go-portfolio-tracker/internal/application"
	repo "github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
	"github.com/oksasatya/go-portfolio-tracker/pkg/helpers"
)

// Container holds the components constructed at startup. The router builds
// services and handlers from it; optional integrations are left nil.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	// Clients; nil when the backing service is not configured.
	PGPool    *pgxpool.Pool
	Redis     *redis.Client
	GCS       *storage.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher

	JWT *helpers.JWTManager

	// Storage and integrations behind the application ports.
	Users     repo.UserRepository
	Portfolio repo.PortfolioRepository
	Prices    repo.PriceSource
	Uploader  application.ObjectUploader
	Search    application.TransactionIndex
	Publisher application.JobPublisher

	// Health checks, keyed by dependency name.
	Checks map[string]func(ctx context.Context) error
}

// AddCheck registers a health check.
func (c *Container) AddCheck(name string, fn func(ctx context.Context) error) {
	if c.Checks == nil {
		c.Checks = map[string]func(ctx context.Context) error{}
	}
	c.Checks[name] = fn
}
