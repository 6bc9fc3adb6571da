package cache

import (
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"

	"github.com/AssilKherfi/Retention-Dashboard/calculations"
	"github.com/AssilKherfi/Retention-Dashboard/logging"
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

const keyPrefix = "result:"

// Observer is told about every memoizer lookup
type Observer interface {
	ObserveCache(hit bool)
}

// Memoizer caches pipeline results by input hash and parameters.
// A nil cache turns it into a pass-through.
type Memoizer struct {
	cache    Cache
	codec    Codec
	observer Observer
	logger   *logging.Logger
}

// MemoizerOption customises a Memoizer
type MemoizerOption func(*Memoizer)

// WithCodec replaces the default JSON codec
func WithCodec(c Codec) MemoizerOption {
	return func(m *Memoizer) { m.codec = c }
}

// WithObserver registers a hit/miss observer
func WithObserver(o Observer) MemoizerOption {
	return func(m *Memoizer) { m.observer = o }
}

// WithLogger sets the logger used for cache failures
func WithLogger(l *logging.Logger) MemoizerOption {
	return func(m *Memoizer) { m.logger = l }
}

// NewMemoizer wraps c
func NewMemoizer(c Cache, opts ...MemoizerOption) *Memoizer {
	m := &Memoizer{
		cache:  c,
		codec:  NewJSONCodec(),
		logger: logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do returns the cached result for key, or runs fn and stores what it
// returns. Cache failures are logged and never fail the call.
func (m *Memoizer) Do(key string, fn func() (*calculations.Result, error)) (*calculations.Result, bool, error) {
	if m == nil || m.cache == nil {
		res, err := fn()
		return res, false, err
	}

	if data, ok := m.cache.Get(key); ok {
		res, err := m.codec.Decode(data)
		if err == nil {
			m.observe(true)
			return res, true, nil
		}
		m.logger.Warnf("discarding unreadable cache entry %s: %v", key, err)
		_ = m.cache.Delete(key)
	}
	m.observe(false)

	res, err := fn()
	if err != nil {
		return nil, false, err
	}

	data, err := m.codec.Encode(res)
	if err != nil {
		m.logger.Warnf("failed to encode result %s: %v", key, err)
		return res, false, nil
	}
	if err := m.cache.Set(key, data); err != nil {
		m.logger.Warnf("failed to cache result %s: %v", key, err)
	}
	return res, false, nil
}

// Stats exposes the underlying cache counters
func (m *Memoizer) Stats() CacheStats {
	if m == nil || m.cache == nil {
		return CacheStats{}
	}
	return m.cache.Stats()
}

func (m *Memoizer) observe(hit bool) {
	if m.observer != nil {
		m.observer.ObserveCache(hit)
	}
}

// Key fingerprints orders and params. Equal inputs give equal keys,
// and any change to an order field or parameter gives a different one.
func Key(orders []models.Order, params calculations.Params) (string, error) {
	h := xxhash.New()
	for i := range orders {
		writeOrder(h, &orders[i])
	}

	// ConfigStd sorts map keys, keeping the margin table canonical
	p, err := sonic.ConfigStd.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode params: %w", err)
	}
	_, _ = h.Write(p)

	return keyPrefix + strconv.FormatUint(h.Sum64(), 16), nil
}

func writeOrder(h *xxhash.Digest, o *models.Order) {
	prev := ""
	if o.PreviousOrderDate != nil {
		prev = o.PreviousOrderDate.Format(models.DateFormat)
	}
	fields := []string{
		o.OrderID,
		o.CustomerID,
		o.Date.Format(models.DateFormat),
		string(o.Status),
		o.BusinessCategory,
		o.Origin,
		o.PaymentType,
		o.Amount.String(),
		prev,
	}
	for _, f := range fields {
		_, _ = h.WriteString(f)
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{'\n'})
}
