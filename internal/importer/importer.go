// Package importer implements the batch data import pipeline that loads
// scraped restaurant records into the directory. Imports are strictly
// sequential: one bad record is reported and skipped, it never aborts the
// batch. Only unreadable or malformed input files are fatal.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/models"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/db/repositories"
	"github.com/findsoupnearme/findsoupnearme-backend/internal/telemetry"
)

// RawSoup is one soup entry as it appears in scraped input
type RawSoup struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	SoupType      string   `json:"soup_type"`
	DietaryInfo   []string `json:"dietary_info"`
	IsSeasonal    bool     `json:"is_seasonal"`
	AvailableDays []string `json:"available_days"`
}

// RawRestaurant mirrors the scraped/enriched JSON shape. Every field except
// Name is optional; the pipeline fills explicit defaults before insert.
type RawRestaurant struct {
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Address     string            `json:"address"`
	City        string            `json:"city"`
	State       string            `json:"state"`
	Zip         string            `json:"zip"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Phone       string            `json:"phone"`
	Website     string            `json:"website"`
	Hours       map[string]string `json:"hours"`
	PriceRange  string            `json:"price_range"`
	CuisineTags []string          `json:"cuisine_tags"`
	Soups       []RawSoup         `json:"soups"`
	// SoupTypes is the shorthand some scrapes use: soup names only,
	// no descriptions or hints.
	SoupTypes []string `json:"soup_types"`
}

// Failure records why a single record or soup was skipped
type Failure struct {
	Record string `json:"record"`
	Reason string `json:"reason"`
}

// Report is the structured outcome of a batch import
type Report struct {
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	SoupsCreated int       `json:"soups_created"`
	SoupsFailed  int       `json:"soups_failed"`
	Failures     []Failure `json:"failures,omitempty"`
}

// Defaults are the fill-in values for optional record fields
type Defaults struct {
	PriceRange string
	State      string
}

// Importer loads raw restaurant records into the directory
type Importer struct {
	restaurantRepo *repositories.RestaurantRepository
	soupRepo       *repositories.SoupRepository
	defaults       Defaults
}

// NewImporter creates a new Importer
func NewImporter(restaurantRepo *repositories.RestaurantRepository, soupRepo *repositories.SoupRepository, defaults Defaults) *Importer {
	return &Importer{
		restaurantRepo: restaurantRepo,
		soupRepo:       soupRepo,
		defaults:       defaults,
	}
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9-]+`)
var slugCollapseRe = regexp.MustCompile(`-{2,}`)

// Slugify derives a URL slug from a restaurant name: lowercase, whitespace
// to hyphens, everything outside [a-z0-9-] stripped, repeats collapsed.
// Uniqueness is NOT enforced here; the diagnostics report duplicates instead.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ImportBatch inserts records one at a time, in input order. A failed
// restaurant insert skips that record's soups; a failed soup insert is
// logged and does not block its siblings.
func (i *Importer) ImportBatch(ctx context.Context, records []RawRestaurant) *Report {
	report := &Report{Failures: []Failure{}}

	for _, record := range records {
		if err := i.importRecord(ctx, record, report); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, Failure{Record: record.Name, Reason: err.Error()})
			telemetry.ImportRecordsTotal.WithLabelValues("failure").Inc()
			slog.Error("import record failed", "name", record.Name, "error", err)
			continue
		}
		report.Succeeded++
		telemetry.ImportRecordsTotal.WithLabelValues("success").Inc()
	}

	slog.Info("import batch finished",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"soups_created", report.SoupsCreated,
		"soups_failed", report.SoupsFailed)

	return report
}

func (i *Importer) importRecord(ctx context.Context, record RawRestaurant, report *Report) error {
	if strings.TrimSpace(record.Name) == "" {
		return fmt.Errorf("record has no name")
	}

	restaurant := i.buildRestaurant(record)
	if err := i.restaurantRepo.CreateRestaurant(ctx, restaurant); err != nil {
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}

	for _, raw := range i.collectSoups(record) {
		soup := buildSoup(restaurant.ID, raw)
		if err := i.soupRepo.CreateSoup(ctx, soup); err != nil {
			report.SoupsFailed++
			report.Failures = append(report.Failures, Failure{
				Record: fmt.Sprintf("%s / %s", record.Name, raw.Name),
				Reason: err.Error(),
			})
			telemetry.ImportSoupsTotal.WithLabelValues("failure").Inc()
			slog.Warn("import soup failed", "restaurant", record.Name, "soup", raw.Name, "error", err)
			continue
		}
		report.SoupsCreated++
		telemetry.ImportSoupsTotal.WithLabelValues("success").Inc()
	}

	return nil
}

// buildRestaurant applies explicit defaults for every optional field
func (i *Importer) buildRestaurant(record RawRestaurant) *models.Restaurant {
	slug := record.Slug
	if slug == "" {
		parts := []string{record.Name}
		if record.City != "" {
			parts = append(parts, record.City)
		}
		if record.State != "" {
			parts = append(parts, record.State)
		}
		slug = Slugify(strings.Join(parts, " "))
	}

	state := record.State
	if state == "" {
		state = i.defaults.State
	}
	priceRange := record.PriceRange
	if priceRange == "" {
		priceRange = i.defaults.PriceRange
	}

	hoursJSON := "{}"
	if len(record.Hours) > 0 {
		if encoded, err := json.Marshal(record.Hours); err == nil {
			hoursJSON = string(encoded)
		}
	}

	tags := record.CuisineTags
	if tags == nil {
		tags = []string{}
	}

	return &models.Restaurant{
		Name:        strings.TrimSpace(record.Name),
		Slug:        slug,
		Address:     record.Address,
		City:        record.City,
		State:       state,
		Zip:         record.Zip,
		Latitude:    record.Latitude,
		Longitude:   record.Longitude,
		Phone:       record.Phone,
		Website:     record.Website,
		HoursJSON:   hoursJSON,
		PriceRange:  priceRange,
		CuisineTags: tags,
	}
}

// collectSoups merges the detailed soups list with the soup_types shorthand
func (i *Importer) collectSoups(record RawRestaurant) []RawSoup {
	soups := make([]RawSoup, 0, len(record.Soups)+len(record.SoupTypes))
	seen := make(map[string]bool)

	for _, soup := range record.Soups {
		if strings.TrimSpace(soup.Name) == "" {
			continue
		}
		soups = append(soups, soup)
		seen[strings.ToLower(soup.Name)] = true
	}

	for _, name := range record.SoupTypes {
		if strings.TrimSpace(name) == "" || seen[strings.ToLower(name)] {
			continue
		}
		soups = append(soups, RawSoup{Name: name, SoupType: name})
	}

	return soups
}

func buildSoup(restaurantID string, raw RawSoup) *models.Soup {
	dietary := raw.DietaryInfo
	if dietary == nil {
		dietary = []string{}
	}
	days := raw.AvailableDays
	if len(days) == 0 {
		// Available all week unless the source says otherwise.
		days = models.AllWeekdays
	}

	return &models.Soup{
		RestaurantID:  restaurantID,
		Name:          strings.TrimSpace(raw.Name),
		Description:   raw.Description,
		SoupType:      raw.SoupType,
		DietaryInfo:   dietary,
		IsSeasonal:    raw.IsSeasonal,
		AvailableDays: days,
	}
}
