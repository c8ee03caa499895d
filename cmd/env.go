package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/analyzer"
	"github.com/sells-group/location-intel/internal/cache"
	"github.com/sells-group/location-intel/internal/classify"
	"github.com/sells-group/location-intel/internal/provider"
	"github.com/sells-group/location-intel/internal/viability"
	anthropicpkg "github.com/sells-group/location-intel/pkg/anthropic"
	"github.com/sells-group/location-intel/pkg/cbs"
	"github.com/sells-group/location-intel/pkg/overpass"
	"github.com/sells-group/location-intel/pkg/pdok"
	"github.com/sells-group/location-intel/pkg/places"
)

// appEnv holds the initialized cache, analyzer and engine shared by the
// analyze/concept/serve commands.
type appEnv struct {
	Cache    *cache.Cache
	Analyzer *analyzer.Analyzer
	Engine   *viability.Engine

	backend cache.Backend
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.backend != nil {
		_ = e.backend.Close()
	}
}

// initEnv sets up the cache backend, all upstream clients, the provider
// adapters and the two top-level services. Callers should defer
// env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	backend := cache.Open(ctx, cache.Config{
		Driver: cfg.Cache.Driver,
		URL:    cfg.Cache.URL,
	})
	c := cache.New(backend)

	var statsOpts []cbs.Option
	if cfg.Stats.BaseURL != "" {
		statsOpts = append(statsOpts, cbs.WithODataBaseURL(cfg.Stats.BaseURL))
	}
	statsClient := cbs.NewClient(statsOpts...)

	var geocodeOpts []pdok.Option
	if cfg.Geocode.BaseURL != "" {
		geocodeOpts = append(geocodeOpts, pdok.WithGeocodeBaseURL(cfg.Geocode.BaseURL))
	}
	geocodeClient := pdok.NewClient(geocodeOpts...)

	var osmOpts []overpass.Option
	if cfg.Overpass.BaseURL != "" {
		osmOpts = append(osmOpts, overpass.WithBaseURL(cfg.Overpass.BaseURL))
	}
	osmClient := overpass.NewClient(osmOpts...)

	// Commercial places API client (optional).
	var placesClient places.Client
	if cfg.Places.Key != "" {
		placesOpts := []places.Option{}
		if cfg.Places.BaseURL != "" {
			placesOpts = append(placesOpts, places.WithBaseURL(cfg.Places.BaseURL))
		}
		placesClient = places.NewClient(cfg.Places.Key, placesOpts...)
		zap.L().Info("commercial places api enabled")
	} else {
		zap.L().Debug("LOCINTEL_PLACES_KEY not set, commercial data source disabled")
	}

	// LLM client (optional).
	var llm anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		llm = anthropicpkg.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Debug("LOCINTEL_ANTHROPIC_KEY not set, classification and insight fall back to deterministic paths")
	}

	commercial := provider.NewCommercialProvider(placesClient, c)

	a := analyzer.New(
		provider.NewDemographicsProvider(statsClient, geocodeClient, c),
		provider.NewBuildingProvider(geocodeClient, c),
		provider.NewTransitProvider(osmClient, placesClient, c),
		provider.NewOpenMapProvider(osmClient, c),
		commercial,
		c,
	)

	classifier := classify.New(llm, commercial, c)
	engine := viability.New(a, commercial, classifier, llm, c)

	return &appEnv{
		Cache:    c,
		Analyzer: a,
		Engine:   engine,
		backend:  backend,
	}, nil
}
