package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sjsage522/cardwatch/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(article, lowest, reference, target string, ts time.Time) model.HistoryRecord {
	price := func(s string) model.Price {
		if s == "" {
			return model.NoPrice()
		}
		return model.SomePrice(decimal.RequireFromString(s))
	}
	return model.HistoryRecord{
		Article:     article,
		Timestamp:   ts,
		LowestOffer: price(lowest),
		Reference:   price(reference),
		Target:      decimal.RequireFromString(target),
	}
}

func TestAppendCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history.csv")
	store := NewCSVStore(path)
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	require.NoError(t, store.Append(record("X", "9.5", "", "10", ts)))
	require.NoError(t, store.Append(record("Ragavan, Nimble Pilferer", "41", "43.25", "40", ts)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"article,timestamp,lowest_offer_price,reference_price,target_price\n"+
			"X,2024-05-01T10:30:00Z,9.50,,10.00\n"+
			"\"Ragavan, Nimble Pilferer\",2024-05-01T10:30:00Z,41.00,43.25,40.00\n",
		string(data))
}

func TestAppendKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	require.NoError(t, NewCSVStore(path).Append(record("A", "1", "2", "3", ts)))
	require.NoError(t, NewCSVStore(path).Append(record("B", "", "", "3", ts)))

	records, err := NewCSVStore(path).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Article)
	assert.Equal(t, "B", records[1].Article)
}

func TestReadAllRoundTrip(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "history.csv"))
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, store.Append(record("X", "9.50", "", "10.00", ts)))

	records, err := store.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "X", got.Article)
	assert.True(t, got.Timestamp.Equal(ts))
	assert.Equal(t, "9.50", got.LowestOffer.String())
	assert.False(t, got.Reference.Valid, "empty field reads back as absence")
	assert.Equal(t, "10.00", got.Target.StringFixed(2))
}

func TestReadAllMissingFile(t *testing.T) {
	records, err := NewCSVStore(filepath.Join(t.TempDir(), "none.csv")).ReadAll()
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadAllRejectsCorruptRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"article,timestamp,lowest_offer_price,reference_price,target_price\n"+
			"X,yesterday,9.50,,10.00\n"), 0644))

	_, err := NewCSVStore(path).ReadAll()
	assert.Error(t, err)
}
