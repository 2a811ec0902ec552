package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sjsage522/cardwatch/helpers"
	"sjsage522/cardwatch/internal"
	"sjsage522/cardwatch/internal/crawler"
	"sjsage522/cardwatch/internal/model"
	"sjsage522/cardwatch/internal/reference"
	apperrors "sjsage522/cardwatch/pkg/errors"
	"sjsage522/cardwatch/services/chart"
	"sjsage522/cardwatch/services/history"
	"sjsage522/cardwatch/services/notifier"
	"sjsage522/cardwatch/services/publisher"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockOfferSource implements the crawler.OfferSource interface for testing
type MockOfferSource struct {
	offers map[string][]model.Offer
	errs   map[string]error
	limits []int
}

// Ensure MockOfferSource implements crawler.OfferSource
var _ crawler.OfferSource = (*MockOfferSource)(nil)

func NewMockOfferSource() *MockOfferSource {
	return &MockOfferSource{offers: map[string][]model.Offer{}, errs: map[string]error{}}
}

func (m *MockOfferSource) FetchOffers(_ context.Context, listingURL string, limit int) ([]model.Offer, error) {
	m.limits = append(m.limits, limit)
	if err, ok := m.errs[listingURL]; ok {
		return nil, err
	}
	offers := m.offers[listingURL]
	if len(offers) > limit {
		offers = offers[:limit]
	}
	return offers, nil
}

func (m *MockOfferSource) GetName() string {
	return "Mock"
}

// MockReference implements the reference.PriceSource interface for testing
type MockReference struct {
	prices map[int64]model.Price
	err    error
	calls  []int64
}

var _ reference.PriceSource = (*MockReference)(nil)

func (m *MockReference) LowestSellable(_ context.Context, blueprintID int64, _ model.Filter) (model.Price, error) {
	m.calls = append(m.calls, blueprintID)
	if m.err != nil {
		return model.NoPrice(), m.err
	}
	return m.prices[blueprintID], nil
}

// MockHistory keeps records in memory
type MockHistory struct {
	records []model.HistoryRecord
	err     error
}

var _ history.Store = (*MockHistory)(nil)

func (m *MockHistory) Append(r model.HistoryRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, r)
	return nil
}

func (m *MockHistory) ReadAll() ([]model.HistoryRecord, error) {
	return m.records, nil
}

// MockNotifier records what would be sent
type MockNotifier struct {
	alerts   []string
	digests  [][]string
	charts   []string
	alertErr error
	calls    []string
}

var _ notifier.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) SendAlert(_ context.Context, _ model.Job, summary model.PriceSummary, _ []model.Offer) error {
	m.calls = append(m.calls, "alert:"+summary.JobID)
	m.alerts = append(m.alerts, summary.JobID)
	return m.alertErr
}

func (m *MockNotifier) SendDigest(_ context.Context, digest *model.RunDigest) error {
	m.calls = append(m.calls, "digest")
	var names []string
	for _, e := range digest.Entries() {
		names = append(names, e.Name)
	}
	m.digests = append(m.digests, names)
	return nil
}

func (m *MockNotifier) SendChart(_ context.Context, path string) error {
	m.calls = append(m.calls, "chart")
	m.charts = append(m.charts, path)
	return nil
}

// MockChart returns a fixed path
type MockChart struct {
	rendered int
}

var _ chart.Renderer = (*MockChart)(nil)

func (m *MockChart) Render(records []model.HistoryRecord) (string, error) {
	if len(records) == 0 {
		return "", chart.ErrEmptyHistory
	}
	m.rendered++
	return "price_trend.png", nil
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu       sync.Mutex
	messages [][]byte
	trimmed  int
}

// Ensure MockPublisher implements publisher.Publisher
var _ publisher.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(_ context.Context, key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, append([]byte(nil), message...))
	return nil
}

func (m *MockPublisher) TrimStreams(context.Context) error {
	m.trimmed++
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// MockLogger implements the helpers.LoggerInterface for testing
type MockLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

// Ensure MockLogger implements helpers.LoggerInterface
var _ helpers.LoggerInterface = (*MockLogger)(nil)

func (m *MockLogger) LogError(jobName string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, jobName+": "+err.Error())
}

func (m *MockLogger) LogInfo(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, fmt.Sprintf(format, args...))
}

func price(s string) model.Price {
	if s == "" {
		return model.NoPrice()
	}
	return model.SomePrice(decimal.RequireFromString(s))
}

func offersAt(prices ...string) []model.Offer {
	var offers []model.Offer
	for i, p := range prices {
		offers = append(offers, model.Offer{
			Article:   "Article",
			Seller:    fmt.Sprintf("seller%d", i),
			PriceText: p,
			Price:     crawler.ParsePrice(p),
			Country:   "Spain",
		})
	}
	return offers
}

func job(alias, url, target string) model.Job {
	return model.Job{
		Alias:       alias,
		ListingURL:  url,
		Filter:      model.DefaultFilter,
		TargetPrice: decimal.RequireFromString(target),
		Notify:      true,
	}
}

type fixture struct {
	offers    *MockOfferSource
	reference *MockReference
	history   *MockHistory
	notifier  *MockNotifier
	chart     *MockChart
	publisher *MockPublisher
	logger    *MockLogger
	worker    *Worker
}

func newFixture() *fixture {
	f := &fixture{
		offers:    NewMockOfferSource(),
		reference: &MockReference{prices: map[int64]model.Price{}},
		history:   &MockHistory{},
		notifier:  &MockNotifier{},
		chart:     &MockChart{},
		publisher: &MockPublisher{},
		logger:    &MockLogger{},
	}
	deps := internal.Dependencies{
		History:   f.history,
		Notifier:  f.notifier,
		Chart:     f.chart,
		Publisher: f.publisher,
		Logger:    f.logger,
	}
	f.worker = NewWorker(deps, NewEvaluator(f.offers, f.reference, 5, 0))
	f.worker.newRunID = func() string { return "run-1" }
	return f
}

func TestRunOnceEndToEnd(t *testing.T) {
	f := newFixture()
	f.offers.offers["https://cm/x"] = offersAt("9,50 €", "11,00 €")

	digest := f.worker.RunOnce(context.Background(), []model.Job{job("X", "https://cm/x", "10.00")})

	assert.Equal(t, []string{"X"}, f.notifier.alerts)
	require.Len(t, f.history.records, 1)
	rec := f.history.records[0]
	assert.Equal(t, "X", rec.Article)
	assert.Equal(t, "9.50", rec.LowestOffer.String())
	assert.False(t, rec.Reference.Valid)
	assert.Equal(t, "10.00", rec.Target.StringFixed(2))

	assert.Equal(t, 1, digest.Len())
	assert.Equal(t, []string{"alert:X", "digest", "chart"}, f.notifier.calls)
	assert.Empty(t, f.logger.errors)
}

func TestRunOnceEndToEndThroughCSV(t *testing.T) {
	f := newFixture()
	store := history.NewCSVStore(filepath.Join(t.TempDir(), "history.csv"))
	f.worker.history = store
	f.offers.offers["https://cm/x"] = offersAt("9.50", "11.00")

	f.worker.RunOnce(context.Background(), []model.Job{job("X", "https://cm/x", "10.00")})

	records, err := store.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "X", records[0].Article)
	assert.Equal(t, "9.50", records[0].LowestOffer.String())
	assert.Equal(t, "", records[0].Reference.String())
	assert.Equal(t, "10.00", records[0].Target.StringFixed(2))
}

func TestRunOnceAbsentReference(t *testing.T) {
	f := newFixture()
	f.offers.offers["https://cm/y"] = offersAt("12,00 €")
	j := job("Y", "https://cm/y", "10.00")
	j.BlueprintID = 777

	digest := f.worker.RunOnce(context.Background(), []model.Job{j})

	assert.Equal(t, []int64{777}, f.reference.calls)
	entry, ok := digest.Get("Y")
	require.True(t, ok)
	assert.False(t, entry.Summary.Reference.Valid)
	_, hasDelta := entry.Summary.Delta()
	assert.False(t, hasDelta)
	assert.NotContains(t, notifier.RenderSummary(entry.Summary), "Delta")
	require.Len(t, f.history.records, 1)
	assert.False(t, f.history.records[0].Reference.Valid)
	assert.Empty(t, f.notifier.alerts, "12.00 is above target")
}

func TestRunOnceReferenceFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.reference.err = apperrors.NewSourceUnavailable("CardTrader", "down", nil)
	f.offers.offers["https://cm/y"] = offersAt("9,00 €")
	j := job("Y", "https://cm/y", "10.00")
	j.BlueprintID = 1

	digest := f.worker.RunOnce(context.Background(), []model.Job{j})

	require.Equal(t, 1, digest.Len())
	assert.Equal(t, []string{"Y"}, f.notifier.alerts)
	assert.Empty(t, f.logger.errors)
}

func TestRunOnceAlertOnlyJobsSkipHistory(t *testing.T) {
	f := newFixture()
	f.offers.offers["https://cm/a"] = offersAt("5,00 €")
	f.offers.offers["https://cm/b"] = offersAt("5,00 €")
	alertOnly := job("A", "https://cm/a", "10.00")
	alertOnly.AlertOnly = true

	digest := f.worker.RunOnce(context.Background(), []model.Job{alertOnly, job("B", "https://cm/b", "10.00")})

	assert.Equal(t, []string{"A", "B"}, f.notifier.alerts, "alert-only jobs still alert")
	require.Len(t, f.history.records, 1)
	assert.Equal(t, "B", f.history.records[0].Article)
	assert.Equal(t, [][]string{{"B"}}, f.notifier.digests)
	_, ok := digest.Get("A")
	assert.False(t, ok)
}

func TestRunOnceFailedJobDoesNotStopOthers(t *testing.T) {
	f := newFixture()
	f.offers.errs["https://cm/broken"] = apperrors.NewSourceUnavailable("Mock", "no active offers", nil)
	f.offers.offers["https://cm/empty"] = nil
	f.offers.offers["https://cm/ok"] = offersAt("20,00 €")

	digest := f.worker.RunOnce(context.Background(), []model.Job{
		job("Broken", "https://cm/broken", "10"),
		job("Empty", "https://cm/empty", "10"),
		job("OK", "https://cm/ok", "10"),
	})

	assert.Equal(t, 1, digest.Len())
	_, ok := digest.Get("OK")
	assert.True(t, ok)
	require.Len(t, f.history.records, 1)
	assert.Equal(t, "OK", f.history.records[0].Article)
	require.Len(t, f.logger.errors, 2)
	assert.Contains(t, f.logger.errors[0], "Broken")
	assert.Contains(t, f.logger.errors[1], "Empty")
	assert.Contains(t, f.logger.errors[1], "no_offers")
}

func TestRunOnceUnparseablePricesNeverAlert(t *testing.T) {
	f := newFixture()
	f.offers.offers["https://cm/x"] = offersAt("—", "ask", "")

	digest := f.worker.RunOnce(context.Background(), []model.Job{job("X", "https://cm/x", "1000000")})

	assert.Empty(t, f.notifier.alerts)
	entry, ok := digest.Get("X")
	require.True(t, ok)
	assert.False(t, entry.Summary.LowestOffer.Valid)
	require.Len(t, f.history.records, 1)
	assert.Equal(t, "", f.history.records[0].LowestOffer.String())
}

func TestRunOnceAlertFailureIsLogged(t *testing.T) {
	f := newFixture()
	f.notifier.alertErr = apperrors.NewDelivery("alert", "send alert", errors.New("timeout"))
	f.offers.offers["https://cm/x"] = offersAt("1,00 €")

	digest := f.worker.RunOnce(context.Background(), []model.Job{job("X", "https://cm/x", "10")})

	assert.Equal(t, 1, digest.Len(), "a delivery failure does not drop the job")
	require.Len(t, f.logger.errors, 1)
	assert.Contains(t, f.logger.errors[0], "delivery")
}

func TestRunOnceHistoryFailureKeepsDigest(t *testing.T) {
	f := newFixture()
	f.history.err = errors.New("disk full")
	f.offers.offers["https://cm/x"] = offersAt("11,00 €")

	digest := f.worker.RunOnce(context.Background(), []model.Job{job("X", "https://cm/x", "10")})

	assert.Equal(t, 1, digest.Len())
	require.Len(t, f.logger.errors, 1)
	assert.Contains(t, f.logger.errors[0], "disk full")
}

func TestRunOnceUsesArticleNameWithoutAlias(t *testing.T) {
	f := newFixture()
	f.offers.offers["https://cm/x"] = offersAt("11,00 €")

	digest := f.worker.RunOnce(context.Background(), []model.Job{job("", "https://cm/x", "10")})

	_, ok := digest.Get("Article")
	assert.True(t, ok)
}

func TestRunOnceEmptyHistorySkipsChart(t *testing.T) {
	f := newFixture()
	f.offers.errs["https://cm/x"] = errors.New("down")

	f.worker.RunOnce(context.Background(), []model.Job{job("X", "https://cm/x", "10")})

	assert.Empty(t, f.notifier.calls)
	assert.Equal(t, 0, f.chart.rendered)
	assert.Contains(t, f.logger.infos, "history is empty, no chart")
}

func TestRunOncePublishesSummaries(t *testing.T) {
	f := newFixture()
	f.offers.offers["https://cm/x"] = offersAt("9,50 €")

	f.worker.RunOnce(context.Background(), []model.Job{job("X", "https://cm/x", "10")})

	require.Len(t, f.publisher.messages, 1)
	assert.Equal(t, 1, f.publisher.trimmed)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(f.publisher.messages[0], &event))
	assert.Equal(t, "run-1", event["run_id"])
	assert.Equal(t, "X", event["job"])
	assert.Equal(t, true, event["alert"])
	summary := event["summary"].(map[string]interface{})
	assert.Equal(t, "9.50", summary["lowest_offer"])
	assert.Nil(t, summary["reference"])
}

func TestRunOnceWithoutPublisher(t *testing.T) {
	f := newFixture()
	f.worker.publisher = nil
	f.offers.offers["https://cm/x"] = offersAt("9,50 €")

	digest := f.worker.RunOnce(context.Background(), []model.Job{job("X", "https://cm/x", "10")})
	assert.Equal(t, 1, digest.Len())
}

func TestScheduleRejectsInvalidSpec(t *testing.T) {
	f := newFixture()
	err := f.worker.Schedule(context.Background(), "every now and then", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}

func TestScheduleRunsImmediatelyAndStops(t *testing.T) {
	f := newFixture()
	f.offers.offers["https://cm/x"] = offersAt("11,00 €")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := f.worker.Schedule(ctx, "@every 1h", []model.Job{job("X", "https://cm/x", "10")})
	require.NoError(t, err)
	assert.Len(t, f.history.records, 1)
}
