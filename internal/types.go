package internal

import (
	"sjsage522/cardwatch/helpers"
	"sjsage522/cardwatch/internal/crawler"
	"sjsage522/cardwatch/internal/reference"
	"sjsage522/cardwatch/services/cache"
	"sjsage522/cardwatch/services/chart"
	"sjsage522/cardwatch/services/history"
	"sjsage522/cardwatch/services/notifier"
	"sjsage522/cardwatch/services/publisher"
)

// Dependencies holds all service dependencies of a monitoring run.
// Publisher is nil when no stream is configured.
type Dependencies struct {
	Cache     cache.CacheService
	Offers    crawler.OfferSource
	Reference reference.PriceSource
	History   history.Store
	Notifier  notifier.Notifier
	Chart     chart.Renderer
	Publisher publisher.Publisher
	Logger    helpers.LoggerInterface
}
