package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kairos-quant/kairos/internal/cache"
	"github.com/kairos-quant/kairos/internal/config"
	"github.com/kairos-quant/kairos/internal/logger"
	"github.com/kairos-quant/kairos/internal/storage"
)

// loadConfig reads the config file if one was given, falling back to
// defaults, and validates it.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newCacheStore builds the cache over the configured backend.
func newCacheStore(cfg *config.Config, log *zap.Logger) (*cache.Store, error) {
	var backend storage.Backend
	var err error

	switch cfg.Cache.Backend {
	case "s3":
		backend, err = storage.NewS3(storage.S3Config{
			Bucket:    cfg.Cache.S3.Bucket,
			Endpoint:  cfg.Cache.S3.Endpoint,
			Region:    cfg.Cache.S3.Region,
			AccessKey: cfg.Cache.S3.AccessKey,
			SecretKey: cfg.Cache.S3.SecretKey,
			Prefix:    cfg.Cache.S3.Prefix,
		})
	default:
		backend, err = storage.NewLocalFS(cfg.Cache.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("creating cache backend: %w", err)
	}

	return cache.NewStore(backend, cache.WithLogger(logger.Component(log, "cache"))), nil
}
