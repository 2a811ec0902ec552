package crawler

import (
	"context"
	"io"
	"time"

	"sjsage522/cardwatch/internal/model"
)

// OfferSource interface defines the contract for marketplace implementations
type OfferSource interface {
	// FetchOffers returns at most limit offers of a listing page in display rank order
	FetchOffers(ctx context.Context, listingURL string, limit int) ([]model.Offer, error)

	// GetName returns the source name for logging and identification
	GetName() string
}

// FetchFunc retrieves a page and returns its UTF-8 body
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// Selectors contains CSS selectors for the elements of a listing page
type Selectors struct {
	OfferRow     string
	Price        string
	Seller       string
	Location     string
	Sales        string
	SalesAttr    string
	Quantity     string
	ArticleTitle string
}

// CrawlerConfig contains configuration for a crawler
type CrawlerConfig struct {
	CacheKey    string
	BlockTime   time.Duration
	Provider    string
	TitleSuffix string
	Selectors   Selectors
	FetchMode   string
	ChromeBin   string
	PageTimeout time.Duration
}

// placeholder is shown for cells missing from a listing row
const placeholder = "—"
