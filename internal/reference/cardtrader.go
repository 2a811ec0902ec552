// Package reference fetches authoritative reference prices.
package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sjsage522/cardwatch/internal/model"
	"sjsage522/cardwatch/logger"
	apperrors "sjsage522/cardwatch/pkg/errors"

	"github.com/shopspring/decimal"
)

// PriceSource returns the lowest sellable price of a catalog product
type PriceSource interface {
	LowestSellable(ctx context.Context, blueprintID int64, filter model.Filter) (model.Price, error)
}

// HTTPClient is the subset of *http.Client used by the CardTrader client
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const sourceName = "CardTrader"

// product is one marketplace entry of the CardTrader products endpoint
type product struct {
	Price struct {
		Cents int64 `json:"cents"`
	} `json:"price"`
	User struct {
		CanSellViaHub bool `json:"can_sell_via_hub"`
	} `json:"user"`
}

// CardTrader queries the CardTrader marketplace API
type CardTrader struct {
	baseURL string
	token   string
	timeout time.Duration
	client  HTTPClient
	log     *logger.Logger
}

// NewCardTrader creates a client for the API rooted at baseURL
func NewCardTrader(baseURL, token string, timeout time.Duration) *CardTrader {
	return NewCardTraderWithClient(baseURL, token, timeout, &http.Client{Timeout: timeout})
}

// NewCardTraderWithClient creates a client using the given HTTP client
func NewCardTraderWithClient(baseURL, token string, timeout time.Duration, client HTTPClient) *CardTrader {
	return &CardTrader{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
		client:  client,
		log:     logger.ForSource(sourceName),
	}
}

// LowestSellable returns the cheapest entry whose seller ships through the
// hub (CardTrader Zero). It returns an absent price when no entry qualifies.
func (c *CardTrader) LowestSellable(ctx context.Context, blueprintID int64, filter model.Filter) (model.Price, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("blueprint_id", strconv.FormatInt(blueprintID, 10))
	params.Set("foil", filter.Foil)
	params.Set("language", filter.Language)
	if filter.Condition != "" {
		params.Set("condition", filter.Condition)
	}
	endpoint := c.baseURL + "/marketplace/products?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.NoPrice(), apperrors.NewSourceUnavailable(sourceName, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("params", params.Encode()).Msg("requesting marketplace products")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.NoPrice(), apperrors.NewSourceUnavailable(sourceName, "request marketplace products", err)
	}
	defer resp.Body.Close()

	c.log.Debug().Int("status", resp.StatusCode).Msg("marketplace products response")

	if resp.StatusCode != http.StatusOK {
		return model.NoPrice(), apperrors.NewSourceUnavailable(sourceName,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	var body map[string][]product
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.NoPrice(), apperrors.NewSourceUnavailable(sourceName, "decode marketplace products", err)
	}

	lowest := model.NoPrice()
	for _, p := range body[strconv.FormatInt(blueprintID, 10)] {
		if !p.User.CanSellViaHub {
			continue
		}
		lowest = model.MinPrice(lowest, model.SomePrice(decimal.New(p.Price.Cents, -2)))
	}

	if lowest.Valid {
		c.log.Debug().Int64("blueprint_id", blueprintID).Str("price", lowest.String()).Msg("lowest hub price")
	}
	return lowest, nil
}
