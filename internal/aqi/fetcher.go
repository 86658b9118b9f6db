// Package aqi scrapes a live air quality reading for the dashboard's
// configured city. Readings are cached in redis so the upstream page is
// hit at most every half hour.
package aqi

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/airhealth/backend/internal/database"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// Reading is one scraped AQI observation, banded on the CPCB scale.
type Reading struct {
	City      string    `json:"city"`
	AQI       int       `json:"aqi"`
	Band      string    `json:"band"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

const cacheTTL = 30 * time.Minute

var digits = regexp.MustCompile(`\d+`)

type Fetcher struct {
	city     string
	url      string
	selector string
	cache    *database.Cache
	logger   *logrus.Logger
}

func NewFetcher(city, url, selector string, cache *database.Cache, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		city:     city,
		url:      url,
		selector: selector,
		cache:    cache,
		logger:   logger,
	}
}

// Current returns the cached reading when fresh, scraping otherwise.
func (f *Fetcher) Current(ctx context.Context) (*Reading, error) {
	if f.cache != nil {
		var cached Reading
		if err := f.cache.GetCachedAQI(ctx, f.city, &cached); err == nil {
			f.logger.WithField("city", f.city).Debug("AQI reading served from cache")
			return &cached, nil
		}
	}

	reading, err := f.fetch()
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.CacheAQI(ctx, f.city, reading, cacheTTL); err != nil {
			f.logger.WithError(err).Warn("Failed to cache AQI reading")
		}
	}

	return reading, nil
}

func (f *Fetcher) fetch() (*Reading, error) {
	c := colly.NewCollector(
		colly.UserAgent("AirHealth-Dashboard/1.0"),
	)
	c.SetRequestTimeout(15 * time.Second)

	var reading *Reading
	var fetchError error

	c.OnHTML(f.selector, func(e *colly.HTMLElement) {
		if reading != nil {
			return
		}

		match := digits.FindString(strings.TrimSpace(e.Text))
		if match == "" {
			return
		}

		value, err := strconv.Atoi(match)
		if err != nil {
			return
		}

		reading = &Reading{
			City:      f.city,
			AQI:       value,
			Band:      Band(value),
			Source:    f.url,
			FetchedAt: time.Now().UTC(),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchError = err
	})

	if err := c.Visit(f.url); err != nil {
		return nil, fmt.Errorf("failed to fetch AQI page: %w", err)
	}
	if fetchError != nil {
		return nil, fmt.Errorf("AQI page request failed: %w", fetchError)
	}
	if reading == nil {
		return nil, fmt.Errorf("no AQI value found at selector %q", f.selector)
	}

	f.logger.WithFields(logrus.Fields{
		"city": f.city,
		"aqi":  reading.AQI,
		"band": reading.Band,
	}).Info("Fetched live AQI reading")

	return reading, nil
}

// Band maps an AQI value to its CPCB category.
func Band(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Satisfactory"
	case aqi <= 200:
		return "Moderate"
	case aqi <= 300:
		return "Poor"
	case aqi <= 400:
		return "Very Poor"
	default:
		return "Severe"
	}
}
