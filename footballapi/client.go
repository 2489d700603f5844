package footballapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.football-data.org/v4"

	headerAuthToken         = "X-Auth-Token"
	headerRequestsAvailable = "X-Requests-Available-Minute"
)

type ClientConfig struct {
	BaseURL string
	APIKey  string
	// RequestsPerMinute is the plan quota reported alongside the remaining count.
	RequestsPerMinute int
	Timeout           time.Duration
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("football-data GET %s failed: %d body=%s", e.Path, e.StatusCode, e.Body)
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limit   int
	status  *StatusStore
	logger  *slog.Logger
}

func NewClient(cfg ClientConfig, status *StatusStore, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if status == nil {
		status = NewStatusStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limit:   cfg.RequestsPerMinute,
		status:  status,
		logger:  logger,
	}
}

func (c *Client) Status() Status {
	return c.status.Get()
}

func (c *Client) GetCompetitions(ctx context.Context) ([]Competition, error) {
	var resp CompetitionsResponse
	if err := c.getJSON(ctx, "/competitions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Competitions, nil
}

func (c *Client) GetMatches(ctx context.Context, competitionID, season int) ([]Match, error) {
	var resp MatchesResponse
	path := fmt.Sprintf("/competitions/%d/matches", competitionID)
	if err := c.getJSON(ctx, path, seasonQuery(season), &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

func (c *Client) GetStandings(ctx context.Context, competitionID, season int) ([]StandingGroup, error) {
	var resp StandingsResponse
	path := fmt.Sprintf("/competitions/%d/standings", competitionID)
	if err := c.getJSON(ctx, path, seasonQuery(season), &resp); err != nil {
		return nil, err
	}
	return resp.Standings, nil
}

func seasonQuery(season int) url.Values {
	return url.Values{"season": []string{strconv.Itoa(season)}}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(headerAuthToken, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("football-data GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.recordQuota(resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode football-data response %s: %w", path, err)
	}
	return nil
}

func (c *Client) recordQuota(h http.Header) {
	var limit, remaining *int
	if c.limit > 0 {
		l := c.limit
		limit = &l
	}
	if raw := h.Get(headerRequestsAvailable); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			remaining = &n
		} else {
			c.logger.Warn("unexpected quota header value", slog.String("header", headerRequestsAvailable), slog.String("value", raw))
		}
	}
	c.status.Record(limit, remaining)
}
