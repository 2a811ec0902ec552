package crawler

import (
	"context"
	"fmt"
	"io"
	"time"

	"sjsage522/cardwatch/logger"
	apperrors "sjsage522/cardwatch/pkg/errors"
	"sjsage522/cardwatch/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// BaseCrawler provides common functionality for all crawlers
type BaseCrawler struct {
	CacheKey    string
	CacheSvc    cache.CacheService
	BlockTime   time.Duration
	Provider    string
	PageTimeout time.Duration
	fetchFunc   FetchFunc
	log         *logger.Logger
}

// isBlocked reports whether a previous rate limit is still in force
func (c *BaseCrawler) isBlocked() bool {
	if c.CacheSvc == nil || c.CacheKey == "" {
		return false
	}
	_, err := c.CacheSvc.Get(c.CacheKey)
	return err == nil
}

// fetchWithCache fetches a URL unless the source is blocked, and blocks the
// source for BlockTime when it answers with a rate limit
func (c *BaseCrawler) fetchWithCache(ctx context.Context, url string) (io.Reader, error) {
	if c.isBlocked() {
		return nil, apperrors.NewSourceUnavailable(c.Provider,
			fmt.Sprintf("blocked for %s after a rate limit", c.BlockTime),
			apperrors.NewRateLimit(c.Provider, ""))
	}

	if c.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PageTimeout)
		defer cancel()
	}

	body, err := c.fetchFunc(ctx, url)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeRateLimit) && c.CacheSvc != nil && c.CacheKey != "" {
			value := []byte(fmt.Sprintf("%d", int(c.BlockTime/time.Second)))
			if cacheErr := c.CacheSvc.Set(c.CacheKey, value, c.BlockTime); cacheErr != nil {
				c.logger().Warn().Err(cacheErr).Str("key", c.CacheKey).Msg("failed to store rate limit block")
			}
		}
		return nil, apperrors.NewSourceUnavailable(c.Provider, "fetch listing page", err)
	}

	return body, nil
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, apperrors.NewSourceUnavailable(c.Provider, "parse listing page", err)
	}
	return doc, nil
}

func (c *BaseCrawler) logger() *logger.Logger {
	if c.log == nil {
		c.log = logger.ForSource(c.Provider)
	}
	return c.log
}

// GetName returns the crawler's provider name for logging
func (c *BaseCrawler) GetName() string {
	return c.Provider
}
