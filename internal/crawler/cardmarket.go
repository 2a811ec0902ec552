package crawler

import (
	"context"
	"fmt"
	"strings"

	"sjsage522/cardwatch/config"
	"sjsage522/cardwatch/helpers"
	"sjsage522/cardwatch/internal/model"
	apperrors "sjsage522/cardwatch/pkg/errors"
	"sjsage522/cardwatch/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// CardmarketCrawler reads the offer table of a Cardmarket product page
type CardmarketCrawler struct {
	BaseCrawler
	Selectors   Selectors
	TitleSuffix string
}

// NewCardmarketCrawler creates a crawler using the fetch strategy named in cfg
func NewCardmarketCrawler(cfg CrawlerConfig, cacheSvc cache.CacheService) *CardmarketCrawler {
	c := &CardmarketCrawler{
		BaseCrawler: BaseCrawler{
			CacheKey:    cfg.CacheKey,
			CacheSvc:    cacheSvc,
			BlockTime:   cfg.BlockTime,
			Provider:    cfg.Provider,
			PageTimeout: cfg.PageTimeout,
		},
		Selectors:   cfg.Selectors,
		TitleSuffix: cfg.TitleSuffix,
	}

	if cfg.FetchMode == config.FetchModeHTTP {
		c.logger().Debug().Msg("using plain HTTP fetch")
		c.fetchFunc = fetchWithHTTP()
	} else {
		c.logger().Debug().Msg("using headless Chrome fetch")
		c.fetchFunc = fetchWithChrome(cfg.ChromeBin, "body")
	}

	return c
}

// FetchOffers fetches the listing page and returns its first limit active offers
func (c *CardmarketCrawler) FetchOffers(ctx context.Context, listingURL string, limit int) ([]model.Offer, error) {
	if limit < 1 {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("offer limit must be at least 1, got %d", limit), nil)
	}

	body, err := c.fetchWithCache(ctx, listingURL)
	if err != nil {
		return nil, err
	}

	doc, err := c.createDocument(body)
	if err != nil {
		return nil, err
	}

	return c.parseOffers(doc, listingURL, limit)
}

func (c *CardmarketCrawler) parseOffers(doc *goquery.Document, listingURL string, limit int) ([]model.Offer, error) {
	rows := doc.Find(c.Selectors.OfferRow)
	if rows.Length() == 0 {
		return nil, apperrors.NewSourceUnavailable(c.Provider, "no active offers on "+listingURL, nil)
	}

	article := c.articleName(doc)

	offers := make([]model.Offer, 0, min(limit, rows.Length()))
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		offers = append(offers, c.parseRow(row, article, listingURL))
		return true
	})

	return offers, nil
}

func (c *CardmarketCrawler) parseRow(row *goquery.Selection, article, listingURL string) model.Offer {
	priceText := cellText(row, c.Selectors.Price)

	country := placeholder
	if label, ok := row.Find(c.Selectors.Location).First().Attr("aria-label"); ok {
		if value, err := helpers.AfterSeparator(label, ":"); err == nil && value != "" {
			country = value
		}
	}

	sales := "0"
	if title, ok := row.Find(c.Selectors.Sales).First().Attr(c.Selectors.SalesAttr); ok {
		if word := helpers.FirstWord(title); word != "" {
			sales = word
		}
	}

	return model.Offer{
		Article:    article,
		Seller:     cellText(row, c.Selectors.Seller),
		Quantity:   cellText(row, c.Selectors.Quantity),
		PriceText:  priceText,
		Price:      ParsePrice(priceText),
		Country:    country,
		Sales:      sales,
		ListingURL: listingURL,
	}
}

// articleName reads the product name from the page title,
// e.g. `Ragavan, Nimble Pilferer | Cardmarket` -> `Ragavan, Nimble Pilferer`
func (c *CardmarketCrawler) articleName(doc *goquery.Document) string {
	title := doc.Find(c.Selectors.ArticleTitle).First()
	if title.Length() == 0 {
		return placeholder
	}

	name := strings.TrimSpace(strings.SplitN(title.Text(), "|", 2)[0])
	if c.TitleSuffix != "" {
		name = strings.TrimSuffix(name, c.TitleSuffix)
	}
	name = strings.NewReplacer(`"`, "", "'", "").Replace(name)
	return strings.TrimSpace(name)
}

// cellText returns the trimmed text of the first match, or the placeholder
func cellText(row *goquery.Selection, selector string) string {
	cell := row.Find(selector).First()
	if cell.Length() == 0 {
		return placeholder
	}
	text := strings.TrimSpace(cell.Text())
	if text == "" {
		return placeholder
	}
	return text
}
