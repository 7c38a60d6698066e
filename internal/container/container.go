package container

import (
	"fmt"
	"net/http"

	"go-image-press/internal/config"
	"go-image-press/internal/encoder"
	"go-image-press/internal/service"
	"go-image-press/internal/store"
	"go-image-press/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config    *config.Config
	tempStore *store.TempStore
	encoder   encoder.ImageEncoder
	service   service.CompressService
	handler   http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Build dependency graph
	tempStore := store.NewTempStore(cfg.TempDir, cfg.MaxUploadSize)
	webpEncoder := encoder.NewWebPEncoder(cfg.MaxConcurrentEncodes)
	params := encoder.Params{Quality: cfg.Quality, Effort: cfg.Effort}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder params: %w", err)
	}

	compressService := service.NewCompressService(tempStore, webpEncoder, params)
	handler := transport.NewHandler(compressService, cfg)

	return &Container{
		config:    cfg,
		tempStore: tempStore,
		encoder:   webpEncoder,
		service:   compressService,
		handler:   handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
