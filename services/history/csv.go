// Package history keeps the append-only price log.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"sjsage522/cardwatch/internal/model"

	"github.com/shopspring/decimal"
)

// Header is the first row of every history file
var Header = []string{"article", "timestamp", "lowest_offer_price", "reference_price", "target_price"}

// Store appends and reads price observations
type Store interface {
	Append(record model.HistoryRecord) error
	ReadAll() ([]model.HistoryRecord, error)
}

// CSVStore keeps the history in a CSV file. It is not safe for concurrent writers.
type CSVStore struct {
	path string
}

// NewCSVStore creates a store backed by the file at path
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the file location
func (s *CSVStore) Path() string {
	return s.path
}

// ensure creates the file with its header unless it already exists
func (s *CSVStore) ensure() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat history %s: %w", s.path, err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("create history %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write history header: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Append writes one record, creating the file with its header on first use
func (s *CSVStore) Append(record model.HistoryRecord) error {
	if err := s.ensure(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open history %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(encode(record)); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ReadAll returns every record in file order. A missing file is an empty history.
func (s *CSVStore) ReadAll() ([]model.HistoryRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	var records []model.HistoryRecord
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read history line %d: %w", line, err)
		}
		if line == 1 && row[0] == Header[0] {
			continue
		}

		record, err := decode(row)
		if err != nil {
			return nil, fmt.Errorf("history line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func encode(r model.HistoryRecord) []string {
	return []string{
		r.Article,
		r.Timestamp.Format(time.RFC3339),
		r.LowestOffer.String(),
		r.Reference.String(),
		r.Target.StringFixed(2),
	}
}

func decode(row []string) (model.HistoryRecord, error) {
	ts, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return model.HistoryRecord{}, fmt.Errorf("timestamp: %w", err)
	}
	lowest, err := decodePrice(row[2])
	if err != nil {
		return model.HistoryRecord{}, fmt.Errorf("lowest offer: %w", err)
	}
	reference, err := decodePrice(row[3])
	if err != nil {
		return model.HistoryRecord{}, fmt.Errorf("reference: %w", err)
	}
	target, err := decimal.NewFromString(row[4])
	if err != nil {
		return model.HistoryRecord{}, fmt.Errorf("target: %w", err)
	}

	return model.HistoryRecord{
		Article:     row[0],
		Timestamp:   ts,
		LowestOffer: lowest,
		Reference:   reference,
		Target:      target,
	}, nil
}

func decodePrice(field string) (model.Price, error) {
	if field == "" {
		return model.NoPrice(), nil
	}
	amount, err := decimal.NewFromString(field)
	if err != nil {
		return model.NoPrice(), err
	}
	return model.SomePrice(amount), nil
}
