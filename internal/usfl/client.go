package usfl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.foxsports.com/bifrost/v1/usfl"

var ErrNotFound = errors.New("usfl: not found")

// RetryConfig controls retries on 429 and 5xx responses.
type RetryConfig struct {
	MaxAttempts int
	Base        time.Duration
	Max         time.Duration
	Cooldown    time.Duration // used on 429 when no Retry-After
}

func DefaultRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 6, Base: 400 * time.Millisecond, Max: 6 * time.Second, Cooldown: 7 * time.Second}
}

// Client talks to the bifrost API. Requests are sequential and spaced by Delay.
type Client struct {
	BaseURL string
	APIKey  string
	Delay   time.Duration
	Retry   RetryConfig
	HTTP    *http.Client
	Log     *slog.Logger

	sleep func(context.Context, time.Duration) error
	last  time.Time
}

func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		Delay:   time.Second,
		Retry:   DefaultRetry(),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Log:     slog.Default(),
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func parseRetryAfter(h string) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func backoff(attempt int, base, max time.Duration) time.Duration {
	d := base * time.Duration(1<<attempt)
	j := time.Duration(rand.Intn(250)) * time.Millisecond
	if d+j > max {
		return max
	}
	return d + j
}

func (c *Client) logger() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

// stripURL drops the request URL, which carries the api key, from transport errors.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// pace waits out whatever is left of Delay since the previous request.
func (c *Client) pace(ctx context.Context) error {
	if c.last.IsZero() || c.Delay <= 0 {
		return nil
	}
	return c.sleep(ctx, c.Delay-time.Since(c.last))
}

// get fetches path relative to BaseURL with the api key attached.
// The key never appears in returned errors or logs.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if c.sleep == nil {
		c.sleep = sleepCtx
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("apikey", c.APIKey)
	full := strings.TrimRight(c.BaseURL, "/") + path + "?" + q.Encode()

	attempts := c.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.pace(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "usfl-stats-go/1.0")

		resp, err := hc.Do(req)
		c.last = time.Now()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%s: %w", path, stripURL(err))
			c.logger().Debug("request failed, retrying", "path", path, "attempt", attempt+1)
			if err := c.sleep(ctx, backoff(attempt, c.Retry.Base, c.Retry.Max)); err != nil {
				return nil, err
			}
			continue
		}

		body, rerr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if rerr != nil {
				lastErr = fmt.Errorf("%s: read body: %w", path, rerr)
				continue
			}
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := parseRetryAfter(resp.Header.Get("Retry-After"))
			if wait == 0 {
				wait = c.Retry.Cooldown
			}
			lastErr = fmt.Errorf("%s: status %d", path, resp.StatusCode)
			c.logger().Info("rate limited", "path", path, "wait", wait)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%s: status %d", path, resp.StatusCode)
			if err := c.sleep(ctx, backoff(attempt, c.Retry.Base, c.Retry.Max)); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%s: status %d (body len=%d)", path, resp.StatusCode, len(body))
		}
	}
	return nil, fmt.Errorf("exhausted retries: %w", lastErr)
}

// GameRaw returns the event payload bytes for one game id.
func (c *Client) GameRaw(ctx context.Context, id int) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/event/%d/data", id), nil)
}

func (c *Client) Game(ctx context.Context, id int) (*Game, []byte, error) {
	raw, err := c.GameRaw(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	g, err := ParseGame(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("game %d: %w", id, err)
	}
	return g, raw, nil
}

func (c *Client) StandingsRaw(ctx context.Context, season int) ([]byte, error) {
	return c.get(ctx, "/league/standings", url.Values{"season": {strconv.Itoa(season)}})
}

func (c *Client) Standings(ctx context.Context, season int) ([]StandingRow, []byte, error) {
	raw, err := c.StandingsRaw(ctx, season)
	if err != nil {
		return nil, nil, err
	}
	rows, err := ParseStandings(season, raw)
	if err != nil {
		return nil, nil, err
	}
	return rows, raw, nil
}
