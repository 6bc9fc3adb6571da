package fx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v5"
	"github.com/jellydator/ttlcache/v3"

	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/logging"
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultCacheTTL   = 12 * time.Hour
	defaultMaxRetries = 3
)

// HTTPConfig configures an HTTPProvider
type HTTPConfig struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	CacheTTL   time.Duration
	MaxRetries int

	Client  *http.Client
	BackOff backoff.BackOff
	Logger  *logging.Logger
}

// HTTPProvider fetches daily rates from a JSON exchange rate API.
//
// The request is GET <url>?base=<foreign>&symbols=<local>&date=<YYYY-MM-DD>
// and the answer {"base":"EUR","date":"2024-01-01","rates":{"DZD":145.2}}.
// Answers are cached per currency pair and day.
type HTTPProvider struct {
	cfg    HTTPConfig
	client *http.Client
	cache  *ttlcache.Cache[string, float64]
	log    *logging.Logger
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// NewHTTPProvider validates cfg and fills its defaults
func NewHTTPProvider(cfg HTTPConfig) (*HTTPProvider, error) {
	if cfg.URL == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "fx.http", "api url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, "fx.http", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger()
	}

	return &HTTPProvider{
		cfg:    cfg,
		client: client,
		cache:  ttlcache.New(ttlcache.WithTTL[string, float64](cfg.CacheTTL)),
		log:    cfg.Logger,
	}, nil
}

// Rate returns local units per one foreign unit on day
func (p *HTTPProvider) Rate(ctx context.Context, local, foreign string, day time.Time) (float64, error) {
	local = strings.ToUpper(local)
	foreign = strings.ToUpper(foreign)
	if local == foreign {
		return 1, nil
	}

	date := models.CalendarDay(day).Format(models.DateFormat)
	key := foreign + "/" + local + "/" + date
	if item := p.cache.Get(key); item != nil {
		return item.Value(), nil
	}

	bo := p.cfg.BackOff
	if bo == nil {
		bo = backoff.NewExponentialBackOff()
	}
	attempt := 0
	rate, err := backoff.Retry(ctx, func() (float64, error) {
		attempt++
		rate, err := p.fetch(ctx, local, foreign, date)
		if err != nil {
			p.log.Debugf("fx lookup %s attempt %d failed: %v", key, attempt, err)
		}
		return rate, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(uint(p.cfg.MaxRetries)))
	if err != nil {
		return 0, errors.Wrap(errors.ErrorTypeNetwork, "fx.http", err)
	}

	p.cache.Set(key, rate, ttlcache.DefaultTTL)
	p.log.Debugf("fx rate %s = %v", key, rate)
	return rate, nil
}

func (p *HTTPProvider) fetch(ctx context.Context, local, foreign, date string) (float64, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	q := u.Query()
	q.Set("base", foreign)
	q.Set("symbols", local)
	q.Set("date", date)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return 0, fmt.Errorf("rate api returned %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return 0, backoff.Permanent(fmt.Errorf("rate api returned %s", resp.Status))
	}

	var out ratesResponse
	if err := sonic.Unmarshal(body, &out); err != nil {
		return 0, backoff.Permanent(fmt.Errorf("failed to decode rate response: %w", err))
	}
	rate, ok := out.Rates[local]
	if !ok || rate <= 0 {
		return 0, backoff.Permanent(fmt.Errorf("no %s rate in response for %s", local, date))
	}
	return rate, nil
}
