// Package astro fetches astronomical data (moon phase) from WeatherAPI
// and caches it for a day. It formats fetched data; it does not
// synthesize horoscope content.
package astro

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const defaultBaseURL = "http://api.weatherapi.com/v1"

// Moon phase data is global, so one cached value per day is enough.
const cacheTTL = 24 * time.Hour

var ErrNoAPIKey = errors.New("weather api key not configured")

// MoonData is the day's moon phase snapshot.
type MoonData struct {
	Phase        string
	Illumination int
	Date         string
}

type cacheEntry struct {
	data    MoonData
	fetched time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithBaseURL overrides the WeatherAPI endpoint (tests).
func WithBaseURL(base string) Option {
	return func(s *Service) { s.base = base }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// Service retrieves moon phase data with an in-memory daily cache.
// Safe for concurrent use.
type Service struct {
	apiKey string
	base   string
	client *http.Client
	log    *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewService(apiKey string, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		apiKey: apiKey,
		base:   defaultBaseURL,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
		cache:  make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MoonPhase returns today's moon phase, from cache when fresh.
func (s *Service) MoonPhase(ctx context.Context, now time.Time) (MoonData, error) {
	day := now.UTC().Format("2006-01-02")
	key := "moon_phase_" + day

	s.mu.Lock()
	if entry, ok := s.cache[key]; ok && now.Sub(entry.fetched) < cacheTTL {
		s.mu.Unlock()
		return entry.data, nil
	}
	s.mu.Unlock()

	if s.apiKey == "" {
		return MoonData{}, ErrNoAPIKey
	}

	data, err := s.fetch(ctx, day)
	if err != nil {
		return MoonData{}, err
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{data: data, fetched: now}
	s.mu.Unlock()

	s.log.Info("fetched moon phase",
		zap.String("phase", data.Phase),
		zap.Int("illumination", data.Illumination))
	return data, nil
}

func (s *Service) fetch(ctx context.Context, day string) (MoonData, error) {
	// London is the reference point for the location-independent data.
	url := fmt.Sprintf("%s/astronomy.json?key=%s&q=London&dt=%s", s.base, s.apiKey, day)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return MoonData{}, fmt.Errorf("build astronomy request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return MoonData{}, fmt.Errorf("fetch astronomy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return MoonData{}, fmt.Errorf("weather api status %d", resp.StatusCode)
	}

	var payload struct {
		Astronomy struct {
			Astro struct {
				MoonPhase        string          `json:"moon_phase"`
				MoonIllumination json.RawMessage `json:"moon_illumination"`
			} `json:"astro"`
		} `json:"astronomy"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return MoonData{}, fmt.Errorf("decode astronomy: %w", err)
	}

	return MoonData{
		Phase:        payload.Astronomy.Astro.MoonPhase,
		Illumination: parseIllumination(payload.Astronomy.Astro.MoonIllumination),
		Date:         day,
	}, nil
}

// parseIllumination tolerates both the quoted and bare number forms the
// API has used over time.
func parseIllumination(raw json.RawMessage) int {
	text := string(raw)
	if len(text) >= 2 && text[0] == '"' {
		text = text[1 : len(text)-1]
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return n
}
