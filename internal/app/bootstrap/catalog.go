package bootstrap

import (
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/sports-travel-platform/internal/apiclient"
	"github.com/wolfman30/sports-travel-platform/internal/catalog"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

// BuildCatalogRepository prefers the local database, falls back to the REST
// API, and puts Redis in front of whichever it picked when available.
func BuildCatalogRepository(db *sql.DB, api *apiclient.Client, redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) catalog.Repository {
	var repo catalog.Repository
	switch {
	case db != nil:
		repo = catalog.NewSQLRepository(db)
	case api != nil:
		repo = api
	default:
		repo = catalog.NewInMemoryRepository()
	}
	if redisClient == nil {
		return repo
	}
	return catalog.NewCachedRepository(repo, redisClient, ttl, logger)
}
