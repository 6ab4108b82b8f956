package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/pkowalczyk/matchforge/internal/ingest"
	"github.com/pkowalczyk/matchforge/internal/models"
)

// SeasonFileClient downloads per-season match CSVs from a remote
// archive. Requests run through a rate limiter and a circuit breaker,
// so a slow or failing archive degrades to "use the files on disk"
// instead of hammering the host.
type SeasonFileClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	loader  *ingest.Loader
	logger  *logrus.Logger
}

func NewSeasonFileClient(baseURL string, requestsPerSecond int, timeout time.Duration, logger *logrus.Logger) *SeasonFileClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}

	settings := gobreaker.Settings{
		Name:    "season-file-archive",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &SeasonFileClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		breaker: gobreaker.NewCircuitBreaker(settings),
		loader:  ingest.NewLoader(logger),
		logger:  logger,
	}
}

// FetchSeason downloads and parses one season's match file, named
// <season>.csv under the archive base URL.
func (c *SeasonFileClient) FetchSeason(ctx context.Context, season string) ([]models.Match, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("no archive base URL configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/%s.csv", c.baseURL, season)
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, url)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	matches := result.([]models.Match)
	c.logger.WithFields(logrus.Fields{
		"component": "season_file_client",
		"season":    season,
		"matches":   len(matches),
	}).Info("Fetched season file")
	return matches, nil
}

// FetchSeasons downloads several seasons and merges them into one
// chronological pool.
func (c *SeasonFileClient) FetchSeasons(ctx context.Context, seasons []string) ([]models.Match, error) {
	var all []models.Match
	for _, season := range seasons {
		matches, err := c.FetchSeason(ctx, season)
		if err != nil {
			return nil, err
		}
		all = append(all, matches...)
	}
	return all, nil
}

func (c *SeasonFileClient) fetch(ctx context.Context, url string) ([]models.Match, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return c.loader.ReadMatches(resp.Body)
}

// BreakerState exposes the circuit state for the health endpoint.
func (c *SeasonFileClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}
