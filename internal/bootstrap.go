package internal

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AssilKherfi/Retention-Dashboard/cache"
	"github.com/AssilKherfi/Retention-Dashboard/config"
	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/fileio"
	"github.com/AssilKherfi/Retention-Dashboard/fx"
)

// bootstrap fills every component not injected through an Option
func (a *App) bootstrap(ctx context.Context) error {
	a.logger.Debug("Bootstrapping application")

	loc, err := loadLocation(a.config.App.Timezone)
	if err != nil {
		return err
	}
	a.location = loc

	if a.source == nil {
		if a.source, err = a.buildSource(ctx); err != nil {
			return fmt.Errorf("failed to set up source: %w", err)
		}
	}
	if a.rates == nil {
		if a.rates, err = a.buildRateProvider(); err != nil {
			return fmt.Errorf("failed to set up exchange rates: %w", err)
		}
	}
	if a.memo == nil {
		if err := a.setupCache(); err != nil {
			return fmt.Errorf("failed to set up cache: %w", err)
		}
	}

	a.logger.Debugf("Bootstrap completed: source=%s", a.source.Name())
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC, nil
	}
	if strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrorTypeConfig, "app.timezone", err, "unknown timezone %q", name)
	}
	return loc, nil
}

func (a *App) sourceOptions() fileio.SourceOptions {
	return fileio.SourceOptions{
		Format:      a.config.Data.Format,
		Parse:       fileio.ParseOptions{Location: a.location},
		Normalizer:  fileio.NewNormalizer(a.config.Data.ExcludedStatuses, a.config.Data.CategoryAliases),
		MaxFileSize: a.config.Data.MaxFileSize,
		Logger:      a.logger,
	}
}

// buildSource picks the order source named by data.source
func (a *App) buildSource(ctx context.Context) (fileio.Source, error) {
	data := a.config.Data
	opts := a.sourceOptions()

	switch data.Source {
	case "", config.SourceFile:
		return fileio.NewFileSource(expandHome(data.OrdersPath), expandHome(data.UsersPath), opts), nil
	case config.SourceS3:
		return fileio.NewS3Source(ctx, fileio.S3Config{
			Bucket:    data.S3.Bucket,
			OrdersKey: data.S3.OrdersKey,
			UsersKey:  data.S3.UsersKey,
			Region:    data.S3.Region,
			Progress:  data.S3.Progress,
		}, opts)
	case config.SourceSQL:
		src, err := fileio.NewSQLSource(ctx, fileio.SQLConfig{
			Driver:      data.SQL.Driver,
			DSN:         data.SQL.DSN,
			OrdersQuery: data.SQL.OrdersQuery,
			UsersQuery:  data.SQL.UsersQuery,
			Timeout:     data.SQL.Timeout,
		}, opts)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, src)
		return src, nil
	default:
		return nil, errors.New(errors.ErrorTypeConfig, "data.source", fmt.Sprintf("unknown source %q", data.Source))
	}
}

// buildRateProvider picks the exchange rate provider named by currency.provider
func (a *App) buildRateProvider() (fx.Provider, error) {
	cur := a.config.Currency
	switch cur.Provider {
	case "", config.ProviderStatic:
		return fx.NewStaticProvider(cur.Rate), nil
	case config.ProviderHTTP:
		return fx.NewHTTPProvider(fx.HTTPConfig{
			URL:        cur.APIURL,
			APIKey:     cur.APIKey,
			Timeout:    cur.Timeout,
			CacheTTL:   cur.CacheTTL,
			MaxRetries: cur.MaxRetries,
			Logger:     a.logger,
		})
	default:
		return nil, errors.New(errors.ErrorTypeConfig, "currency.provider", fmt.Sprintf("unknown provider %q", cur.Provider))
	}
}

// setupCache builds the memoizer. A disabled cache gives a pass-through.
func (a *App) setupCache() error {
	opts := []cache.MemoizerOption{cache.WithLogger(a.logger)}
	if a.metrics != nil {
		opts = append(opts, cache.WithObserver(a.metrics))
	}

	if !a.config.Cache.Enabled {
		a.memo = cache.NewMemoizer(nil, opts...)
		return nil
	}

	c, err := cache.New(cache.Options{
		Backend:  a.config.Cache.Backend,
		Dir:      expandHome(a.config.Cache.Dir),
		TTL:      a.config.Cache.TTL,
		Capacity: a.config.Cache.Capacity,
	})
	if err != nil {
		return err
	}
	if a.config.Cache.Compress {
		opts = append(opts, cache.WithCodec(cache.NewGzipCodec(cache.NewJSONCodec(), gzip.BestSpeed)))
	}
	a.resultCache = c
	a.memo = cache.NewMemoizer(c, opts...)
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
