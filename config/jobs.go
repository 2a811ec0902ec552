package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"sjsage522/cardwatch/internal/model"
	apperrors "sjsage522/cardwatch/pkg/errors"

	"github.com/shopspring/decimal"
)

// jobRecord mirrors one entry of the jobs file.
type jobRecord struct {
	Alias         string           `json:"alias"`
	ListingURL    string           `json:"url_cardmarket"`
	BlueprintID   int64            `json:"blueprint_id"`
	TargetPrice   *decimal.Decimal `json:"target_price"`
	Notify        *bool            `json:"notify"`
	AlertOnly     bool             `json:"alert_only"`
	TargetCountry string           `json:"target_country"`
	Foil          *bool            `json:"foil"`
	Language      string           `json:"language"`
	Condition     *string          `json:"condition"`
}

// LoadJobs reads and validates the jobs file. Any problem with the file is a
// configuration error; no job is returned unless all of them are valid.
func LoadJobs(path string) ([]model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("read jobs file %s", path), err)
	}
	return ParseJobs(data)
}

// ParseJobs decodes a JSON array of job records.
func ParseJobs(data []byte) ([]model.Job, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var records []jobRecord
	if err := dec.Decode(&records); err != nil {
		return nil, apperrors.NewConfiguration("decode jobs", err)
	}

	jobs := make([]model.Job, 0, len(records))
	for i, r := range records {
		job, err := r.toJob()
		if err != nil {
			return nil, apperrors.NewConfiguration(fmt.Sprintf("job #%d (%s)", i+1, r.label()), err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (r jobRecord) label() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.ListingURL
}

func (r jobRecord) toJob() (model.Job, error) {
	if strings.TrimSpace(r.ListingURL) == "" {
		return model.Job{}, fmt.Errorf("url_cardmarket is required")
	}
	if r.TargetPrice == nil || !r.TargetPrice.IsPositive() {
		return model.Job{}, fmt.Errorf("target_price must be a positive amount")
	}
	if r.BlueprintID < 0 {
		return model.Job{}, fmt.Errorf("blueprint_id must not be negative")
	}

	filter := model.DefaultFilter
	if r.Foil != nil {
		filter.Foil = fmt.Sprintf("%t", *r.Foil)
	}
	if r.Language != "" {
		filter.Language = r.Language
	}
	if r.Condition != nil {
		filter.Condition = *r.Condition
	}

	notify := true
	if r.Notify != nil {
		notify = *r.Notify
	}

	return model.Job{
		Alias:         strings.TrimSpace(r.Alias),
		ListingURL:    strings.TrimSpace(r.ListingURL),
		BlueprintID:   r.BlueprintID,
		Filter:        filter,
		TargetPrice:   *r.TargetPrice,
		Notify:        notify,
		AlertOnly:     r.AlertOnly,
		TargetCountry: strings.TrimSpace(r.TargetCountry),
	}, nil
}

// CheckJobs verifies that the configuration carries what the jobs need.
func (c *Config) CheckJobs(jobs []model.Job) error {
	for _, job := range jobs {
		if job.HasReference() && c.CardTraderToken == "" {
			return apperrors.NewConfiguration(
				fmt.Sprintf("CARDTRADER_TOKEN is required: job %s has a blueprint_id", job.Label()), nil)
		}
	}
	return nil
}
