package ner

import (
	"context"
	"io"
	"log/slog"

	"github.com/leakshield/leakshield/internal/cache"
	"github.com/leakshield/leakshield/internal/pii"
)

// Cached wraps a Recognizer with the on-disk entity cache.
type Cached struct {
	inner  Recognizer
	model  string
	cache  *cache.Cache
	logger *slog.Logger
}

// NewCached returns inner unchanged when c is nil or disabled.
func NewCached(inner Recognizer, model string, c *cache.Cache, logger *slog.Logger) Recognizer {
	if c == nil || !c.Enabled() {
		return inner
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{inner: inner, model: model, cache: c, logger: logger}
}

func (c *Cached) Name() string { return c.inner.Name() }

func (c *Cached) Entities(ctx context.Context, text string) ([]pii.Entity, error) {
	key := cache.BuildCacheKey(c.inner.Name(), c.model, text)
	if entities, ok := c.cache.Get(key); ok {
		c.logger.Debug("entity cache hit", "recognizer", c.inner.Name())
		return entities, nil
	}

	entities, err := c.inner.Entities(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(key, c.inner.Name(), entities); err != nil {
		c.logger.Warn("failed to write entity cache", "error", err)
	}
	return entities, nil
}

// Close closes the wrapped recognizer if it holds resources.
func (c *Cached) Close() error {
	if cl, ok := c.inner.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
