package crawler

import (
	"sjsage522/cardwatch/config"
	"sjsage522/cardwatch/logger"
	"sjsage522/cardwatch/services/cache"
)

// cardmarketSelectors describes the offer table of a Cardmarket product page
var cardmarketSelectors = Selectors{
	OfferRow:     "div.article-row:not(.ehcm-article-row-disabled)",
	Price:        "div.price-container span.color-primary",
	Seller:       "span.seller-name a",
	Location:     "span[aria-label*='Item location']",
	Sales:        "span.sell-count",
	SalesAttr:    "data-bs-original-title",
	Quantity:     "div.amount-container span.item-count",
	ArticleTitle: "title",
}

// CardmarketConfig returns the crawler configuration for Cardmarket
func CardmarketConfig(cfg *config.Config) CrawlerConfig {
	return CrawlerConfig{
		CacheKey:    "cardmarket_rate_limited",
		BlockTime:   cfg.RateLimitBlock,
		Provider:    "Cardmarket",
		TitleSuffix: " - MTG Singles",
		Selectors:   cardmarketSelectors,
		FetchMode:   cfg.FetchMode,
		ChromeBin:   cfg.ChromeBin,
		PageTimeout: cfg.PageTimeout,
	}
}

// CreateOfferSource creates the marketplace offer source from the configuration
func CreateOfferSource(cfg *config.Config, cacheSvc cache.CacheService) OfferSource {
	source := NewCardmarketCrawler(CardmarketConfig(cfg), cacheSvc)
	logger.Info("Created offer source %s (fetch mode %s)", source.GetName(), cfg.FetchMode)
	return source
}
