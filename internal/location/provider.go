package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Result is a structured success-or-failure outcome. Providers always
// resolve to a Result and never return an error: the SOS path must not
// need exception handling, and a failed fix degrades to a location-less
// alert instead of aborting the trigger.
type Result struct {
	OK             bool      `json:"ok"`
	Latitude       float64   `json:"latitude,omitempty"`
	Longitude      float64   `json:"longitude,omitempty"`
	AccuracyMeters float64   `json:"accuracyMeters,omitempty"`
	Source         string    `json:"source,omitempty"` // "live" or "last_known"
	ObtainedAt     time.Time `json:"obtainedAt,omitempty"`
	Err            string    `json:"error,omitempty"`
}

// Provider obtains the user's current location, best effort.
type Provider interface {
	Current(ctx context.Context, userID string) Result
}

// HTTPProvider queries a device-location gateway over HTTP with a
// bounded timeout, falling back to the last known reading per user when
// a fresh fix cannot be obtained in time.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	logger   *zap.Logger

	mu        sync.RWMutex
	lastKnown map[string]Result
}

// NewHTTPProvider creates an HTTPProvider. timeout bounds each fix
// attempt; 8s is used when zero.
func NewHTTPProvider(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPProvider {
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	return &HTTPProvider{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: timeout},
		timeout:   timeout,
		logger:    logger,
		lastKnown: make(map[string]Result),
	}
}

type fixResponse struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters"`
}

// Current attempts a fresh fix within the provider timeout. On any
// failure it returns the last known reading for the user if one exists,
// otherwise a Result carrying the error.
func (p *HTTPProvider) Current(ctx context.Context, userID string) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.fetch(ctx, userID)
	if err == nil {
		p.remember(userID, result)
		return result
	}

	p.logger.Warn("location fix failed, trying last known reading",
		zap.String("user_id", userID),
		zap.Error(err),
	)

	if cached, ok := p.recall(userID); ok {
		cached.Source = "last_known"
		return cached
	}

	return Result{OK: false, Err: err.Error()}
}

func (p *HTTPProvider) fetch(ctx context.Context, userID string) (Result, error) {
	url := fmt.Sprintf("%s/v1/devices/%s/location", p.endpoint, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build location request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("location request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("location gateway returned status %d", resp.StatusCode)
	}

	var fix fixResponse
	if err := json.NewDecoder(resp.Body).Decode(&fix); err != nil {
		return Result{}, fmt.Errorf("failed to decode location response: %w", err)
	}

	return Result{
		OK:             true,
		Latitude:       fix.Latitude,
		Longitude:      fix.Longitude,
		AccuracyMeters: fix.AccuracyMeters,
		Source:         "live",
		ObtainedAt:     time.Now(),
	}, nil
}

func (p *HTTPProvider) remember(userID string, r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastKnown[userID] = r
}

func (p *HTTPProvider) recall(userID string) (Result, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.lastKnown[userID]
	return r, ok
}
