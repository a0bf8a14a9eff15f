// Package nbastats provides a minimal client for the stats.nba.com
// leaguegamelog endpoint, mapped onto the raw row shape of the CSV source.
package nbastats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pable/uniqorn/internal/model"
	"github.com/pable/uniqorn/pkg/logger"
)

// DefaultBaseURL is the root endpoint of the stats API.
const DefaultBaseURL = "https://stats.nba.com/stats"

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	maxBodyBytes      = 64 << 20
)

// Client is a minimal stats API client with bounded retries.
type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.Timeout = d } }

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) Option { return func(c *Client) { c.maxRetries = n } }

// WithBackoff sets the linear backoff step between attempts.
func WithBackoff(d time.Duration) Option { return func(c *Client) { c.backoff = d } }

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(l logger.Logger) Option { return func(c *Client) { c.log = l } }

// NewClient returns a client for baseURL. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		backoff:    time.Second,
		log:        logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	return c
}

// resultSet is one table of a stats API response.
type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

type gameLogResponse struct {
	ResultSets []resultSet `json:"resultSets"`
}

// LeagueGameLog fetches every regular-season player game of season
// (e.g. "2024-25") and maps it onto raw rows.
func (c *Client) LeagueGameLog(ctx context.Context, season string) ([]model.RawRow, error) {
	q := url.Values{}
	q.Set("Counter", "0")
	q.Set("Direction", "ASC")
	q.Set("LeagueID", "00")
	q.Set("PlayerOrTeam", "P")
	q.Set("Season", season)
	q.Set("SeasonType", "Regular Season")
	q.Set("Sorter", "DATE")

	var resp gameLogResponse
	if err := c.get(ctx, "/leaguegamelog?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetch game log %s: %w", season, err)
	}
	rows, err := mapGameLog(resp)
	if err != nil {
		return nil, fmt.Errorf("fetch game log %s: %w", season, err)
	}
	c.log.Debug(ctx, "game log fetched", logger.String("season", season), logger.Int("rows", len(rows)))
	return rows, nil
}

// FetchSeasons fetches the game logs of several seasons in order and
// concatenates them. Any failed season aborts the whole fetch.
func (c *Client) FetchSeasons(ctx context.Context, seasons []string) ([]model.RawRow, error) {
	var all []model.RawRow
	for _, s := range seasons {
		rows, err := c.LeagueGameLog(ctx, s)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

// get performs a GET against the stats API, retrying transport errors,
// 429 and 5xx with linear backoff, and JSON-decodes the body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.backoff
			c.log.Warn(ctx, "retrying stats request",
				logger.Int("attempt", attempt), logger.Any("wait", wait), logger.Error(lastErr))
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		body, status, err := c.do(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}
		if status >= 200 && status < 300 {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
		lastErr = fmt.Errorf("%w: %d", ErrStatus, status)
		if !isRetryableStatus(status) {
			return lastErr
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.maxRetries+1, lastErr)
}

func (c *Client) do(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) uniqorn")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func mapGameLog(resp gameLogResponse) ([]model.RawRow, error) {
	var set *resultSet
	for i := range resp.ResultSets {
		if strings.EqualFold(resp.ResultSets[i].Name, "LeagueGameLog") || set == nil {
			set = &resp.ResultSets[i]
		}
	}
	if set == nil {
		return nil, ErrNoResultSet
	}
	col := make(map[string]int, len(set.Headers))
	for i, h := range set.Headers {
		col[strings.ToUpper(h)] = i
	}
	cell := func(row []any, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return formatCell(row[i])
	}

	rows := make([]model.RawRow, 0, len(set.RowSet))
	for _, r := range set.RowSet {
		first, last := model.SplitName(cell(r, "PLAYER_NAME"))
		team, opp := parseMatchup(cell(r, "MATCHUP"), cell(r, "TEAM_ABBREVIATION"))
		rows = append(rows, model.RawRow{
			PersonID:      cell(r, "PLAYER_ID"),
			FirstName:     first,
			LastName:      last,
			GameDate:      cell(r, "GAME_DATE"),
			Team:          team,
			Opponent:      opp,
			Points:        cell(r, "PTS"),
			Assists:       cell(r, "AST"),
			ReboundsTotal: cell(r, "REB"),
			Blocks:        cell(r, "BLK"),
			Steals:        cell(r, "STL"),
		})
	}
	return rows, nil
}

// parseMatchup splits "LAL vs. BOS" or "LAL @ BOS" into team and opponent.
func parseMatchup(matchup, fallback string) (team, opp string) {
	for _, sep := range []string{" vs. ", " @ "} {
		if a, b, ok := strings.Cut(matchup, sep); ok {
			return strings.TrimSpace(a), strings.TrimSpace(b)
		}
	}
	if fallback == "" {
		fallback = "UNK"
	}
	return fallback, "UNK"
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
