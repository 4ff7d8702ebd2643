package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"betedge/engine/internal/cache"
	"betedge/engine/internal/client"
	"betedge/engine/internal/config"
	"betedge/engine/internal/query"
	"betedge/engine/internal/rating"
	"betedge/engine/internal/repository"
	"betedge/engine/internal/source"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Runner owns the collaborators shared by every run of a process: the HTTP
// client, the run cache and the optional warehouse connection
type Runner struct {
	cfg    *config.Config
	id     string
	client *client.Client
	cache  cache.Cache
	db     *repository.Database
}

// NewRunner wires the collaborators described by cfg. A Redis or warehouse
// connection failure degrades to the memory cache or no warehouse.
func NewRunner(ctx context.Context, cfg *config.Config) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	r := &Runner{
		cfg: cfg,
		id:  uuid.NewString(),
		client: client.NewClient(client.Options{
			Timeout:      cfg.HTTPTimeout,
			MaxRetries:   cfg.HTTPMaxRetries,
			RetryDelay:   cfg.HTTPRetryDelay,
			RequestDelay: cfg.RequestDelay,
		}),
	}

	switch cfg.CacheBackend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(cache.Config{
			Host:      cfg.RedisHost,
			Port:      cfg.RedisPort,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: r.id,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Redis cache unavailable, falling back to memory")
			r.cache = cache.NewMemory()
		} else {
			r.cache = rc
		}
	case config.CacheMemory:
		r.cache = cache.NewMemory()
	default:
		r.cache = cache.Noop{}
	}

	if cfg.WarehouseEnabled {
		db, err := repository.NewDatabase(ctx, repository.ConfigFrom(cfg))
		if err != nil {
			log.Warn().Err(err).Msg("Warehouse unavailable, runs continue without it")
		} else {
			r.db = db
		}
	}

	log.Debug().
		Str("runner_id", r.id).
		Str("cache", cfg.CacheBackend).
		Bool("warehouse", r.db != nil).
		Msg("Runner ready")

	return r, nil
}

// ID returns the process-wide identifier used to namespace the run cache
func (r *Runner) ID() string {
	return r.id
}

// Client returns the shared HTTP client
func (r *Runner) Client() *client.Client {
	return r.client
}

// Database returns the warehouse connection, nil when disabled or unreachable
func (r *Runner) Database() *repository.Database {
	return r.db
}

// Run plans and builds the adapters for opts.Domain and executes one pass.
// A domain with no live sources ends in ErrNoData.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Domain == nil {
		return nil, errors.New("domain is required")
	}

	names, err := source.Plan(opts.Domain, opts.Simulate, r.db != nil)
	if err != nil {
		if errors.Is(err, source.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %w", ErrNoData, err)
		}
		return nil, err
	}

	// Fresh random source per run so a fixed seed reproduces the same run
	rng := rating.NewRandom(r.cfg.RandomSeed)

	deps := source.Deps{
		Config: r.cfg,
		Client: r.client,
		Cache:  r.cache,
		Random: rng,
	}
	if r.db != nil {
		deps.Warehouse = r.db.StagedMetrics
	}

	adapters, err := source.Build(names, deps)
	if err != nil {
		return nil, err
	}

	return Execute(ctx, adapters, opts, rng)
}

// Close releases the cache and the warehouse pool
func (r *Runner) Close() {
	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close run cache")
		}
	}
	if r.db != nil {
		r.db.Close()
	}
}

// OptionsFromConfig builds run options from the loaded configuration
func OptionsFromConfig(cfg *config.Config, now time.Time) (Options, error) {
	domain, err := rating.Lookup(cfg.Domain)
	if err != nil {
		return Options{}, err
	}

	date := cfg.Date(now)
	return Options{
		Domain:       domain,
		Simulate:     cfg.Simulate,
		Date:         date,
		Season:       cfg.SeasonFor(date),
		LookbackDays: cfg.LookbackDays,
		Criteria: query.Criteria{
			MinRating:     cfg.MinRating,
			Teams:         cfg.Teams,
			FavorableOnly: cfg.FavorableOnly,
		},
		Top: cfg.TopN,
	}, nil
}
