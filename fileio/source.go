package fileio

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/logging"
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// Source loads orders and registered users from somewhere
type Source interface {
	Name() string
	LoadOrders(ctx context.Context) ([]models.Order, LoadStats, error)
	LoadUsers(ctx context.Context) ([]models.User, LoadStats, error)
}

// SourceOptions are shared by every source
type SourceOptions struct {
	Format      string
	Parse       ParseOptions
	Normalizer  *Normalizer
	MaxFileSize int64
	Logger      *logging.Logger
}

func (o SourceOptions) normalizer() *Normalizer {
	if o.Normalizer == nil {
		return NewNormalizer(nil, nil)
	}
	return o.Normalizer
}

// FileSource reads local CSV, JSON or JSONL exports
type FileSource struct {
	ordersPath string
	usersPath  string
	opts       SourceOptions
}

// NewFileSource creates a source over the given files. usersPath may be
// empty when no signup data is available.
func NewFileSource(ordersPath, usersPath string, opts SourceOptions) *FileSource {
	return &FileSource{ordersPath: ordersPath, usersPath: usersPath, opts: opts}
}

// Name identifies the source in logs and reports
func (f *FileSource) Name() string {
	return "file:" + f.ordersPath
}

// Paths returns the files this source reads, for watching
func (f *FileSource) Paths() []string {
	paths := []string{f.ordersPath}
	if f.usersPath != "" {
		paths = append(paths, f.usersPath)
	}
	return paths
}

// LoadOrders reads and normalizes the order file
func (f *FileSource) LoadOrders(ctx context.Context) ([]models.Order, LoadStats, error) {
	start := time.Now()
	file, size, err := f.open(ctx, f.ordersPath)
	if err != nil {
		return nil, LoadStats{Source: f.ordersPath}, err
	}
	defer file.Close()

	orders, stats, err := ReadOrders(file, DetectFormat(f.ordersPath, f.opts.Format), f.opts.Parse)
	stats.Source = f.ordersPath
	stats.Bytes = size
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read %s: %w", f.ordersPath, err)
	}

	orders = f.opts.normalizer().Orders(orders, &stats)
	stats.Duration = time.Since(start)
	f.opts.Logger.Debugf("loaded orders %s", stats)
	return orders, stats, nil
}

// LoadUsers reads the user file
func (f *FileSource) LoadUsers(ctx context.Context) ([]models.User, LoadStats, error) {
	if f.usersPath == "" {
		return nil, LoadStats{}, errors.New(errors.ErrorTypeDataMissing, "fileio.users", "no users file configured")
	}

	start := time.Now()
	file, size, err := f.open(ctx, f.usersPath)
	if err != nil {
		return nil, LoadStats{Source: f.usersPath}, err
	}
	defer file.Close()

	users, stats, err := ReadUsers(file, DetectFormat(f.usersPath, f.opts.Format), f.opts.Parse)
	stats.Source = f.usersPath
	stats.Bytes = size
	stats.Duration = time.Since(start)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read %s: %w", f.usersPath, err)
	}
	return users, stats, nil
}

func (f *FileSource) open(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrorTypeSource, "fileio.open", err)
	}
	if f.opts.MaxFileSize > 0 && info.Size() > f.opts.MaxFileSize {
		return nil, 0, errors.New(errors.ErrorTypeSource, "fileio.open",
			fmt.Sprintf("%s is %d bytes, over the %d byte limit", path, info.Size(), f.opts.MaxFileSize))
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrorTypeSource, "fileio.open", err)
	}
	return file, info.Size(), nil
}
