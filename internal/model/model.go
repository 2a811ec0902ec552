// Package model defines the domain types shared by the monitoring pipeline.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Filter selects which reference catalog entries count for a job.
type Filter struct {
	Foil      string `json:"foil"`
	Language  string `json:"language"`
	Condition string `json:"condition"`
}

// DefaultFilter is applied when a job leaves the filter fields empty.
var DefaultFilter = Filter{Foil: "true", Language: "en", Condition: "Near Mint"}

// Job is one configured article to monitor. Jobs are read-only once loaded.
type Job struct {
	Alias         string
	ListingURL    string
	BlueprintID   int64
	Filter        Filter
	TargetPrice   decimal.Decimal
	Notify        bool
	AlertOnly     bool
	TargetCountry string
}

// HasReference reports whether the job asks for a reference price.
func (j Job) HasReference() bool {
	return j.BlueprintID > 0
}

// Label identifies the job in logs before its article name is known.
func (j Job) Label() string {
	if j.Alias != "" {
		return j.Alias
	}
	return j.ListingURL
}

// Name returns the job identifier: the alias, or the article name of the
// first offer when no alias is configured.
func (j Job) Name(offers []Offer) string {
	if j.Alias != "" {
		return j.Alias
	}
	if len(offers) > 0 && offers[0].Article != "" {
		return offers[0].Article
	}
	return j.ListingURL
}

// Offer is one marketplace listing row, in page rank order.
type Offer struct {
	Article    string `json:"article"`
	Seller     string `json:"seller"`
	Quantity   string `json:"quantity"`
	PriceText  string `json:"price_text"`
	Price      Price  `json:"price"`
	Country    string `json:"country"`
	Sales      string `json:"sales"`
	ListingURL string `json:"url"`
}

// PriceSummary is the outcome of one job evaluation.
type PriceSummary struct {
	JobID       string          `json:"job_id"`
	LowestOffer Price           `json:"lowest_offer"`
	Reference   Price           `json:"reference"`
	Target      decimal.Decimal `json:"target"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Delta returns reference minus lowest offer. ok is false unless both are present.
func (s PriceSummary) Delta() (delta decimal.Decimal, ok bool) {
	if !s.LowestOffer.Valid || !s.Reference.Valid {
		return decimal.Zero, false
	}
	return s.Reference.Amount.Sub(s.LowestOffer.Amount), true
}

// HistoryRecord is one row of the append-only price log.
type HistoryRecord struct {
	Article     string
	Timestamp   time.Time
	LowestOffer Price
	Reference   Price
	Target      decimal.Decimal
}

// RecordFromSummary converts an evaluation summary to a history row.
func RecordFromSummary(s PriceSummary) HistoryRecord {
	return HistoryRecord{
		Article:     s.JobID,
		Timestamp:   s.Timestamp,
		LowestOffer: s.LowestOffer,
		Reference:   s.Reference,
		Target:      s.Target,
	}
}
