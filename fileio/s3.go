package fileio

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/schollz/progressbar/v3"

	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// S3API is the part of the S3 client the source needs
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config locates the exports in a bucket
type S3Config struct {
	Bucket    string
	OrdersKey string
	UsersKey  string
	Region    string
	Progress  bool
}

// S3Source reads order and user exports from S3 objects
type S3Source struct {
	client S3API
	cfg    S3Config
	opts   SourceOptions
}

// NewS3Source builds an S3 client from the default AWS credential chain
func NewS3Source(ctx context.Context, cfg S3Config, opts SourceOptions) (*S3Source, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, "fileio.s3", err)
	}
	return NewS3SourceWithClient(s3.NewFromConfig(awsCfg), cfg, opts), nil
}

// NewS3SourceWithClient uses an existing client
func NewS3SourceWithClient(client S3API, cfg S3Config, opts SourceOptions) *S3Source {
	return &S3Source{client: client, cfg: cfg, opts: opts}
}

// Name identifies the source in logs and reports
func (s *S3Source) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, s.cfg.OrdersKey)
}

// LoadOrders downloads and normalizes the order export
func (s *S3Source) LoadOrders(ctx context.Context) ([]models.Order, LoadStats, error) {
	start := time.Now()
	body, size, err := s.get(ctx, s.cfg.OrdersKey)
	if err != nil {
		return nil, LoadStats{Source: s.Name()}, err
	}
	defer body.Close()

	orders, stats, err := ReadOrders(body, DetectFormat(s.cfg.OrdersKey, s.opts.Format), s.opts.Parse)
	stats.Source = s.Name()
	stats.Bytes = size
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read %s: %w", s.Name(), err)
	}

	orders = s.opts.normalizer().Orders(orders, &stats)
	stats.Duration = time.Since(start)
	s.opts.Logger.Debugf("loaded orders %s", stats)
	return orders, stats, nil
}

// LoadUsers downloads the user export
func (s *S3Source) LoadUsers(ctx context.Context) ([]models.User, LoadStats, error) {
	if s.cfg.UsersKey == "" {
		return nil, LoadStats{}, errors.New(errors.ErrorTypeDataMissing, "fileio.s3", "no users key configured")
	}

	start := time.Now()
	source := fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, s.cfg.UsersKey)
	body, size, err := s.get(ctx, s.cfg.UsersKey)
	if err != nil {
		return nil, LoadStats{Source: source}, err
	}
	defer body.Close()

	users, stats, err := ReadUsers(body, DetectFormat(s.cfg.UsersKey, s.opts.Format), s.opts.Parse)
	stats.Source = source
	stats.Bytes = size
	stats.Duration = time.Since(start)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return users, stats, nil
}

type progressReader struct {
	io.Reader
	body io.Closer
	bar  *progressbar.ProgressBar
}

func (p *progressReader) Close() error {
	_ = p.bar.Finish()
	return p.body.Close()
}

func (s *S3Source) get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, errors.Wrapf(errors.ErrorTypeSource, "fileio.s3", err, "failed to fetch %s", key)
	}

	size := aws.ToInt64(out.ContentLength)
	if s.opts.MaxFileSize > 0 && size > s.opts.MaxFileSize {
		out.Body.Close()
		return nil, 0, errors.New(errors.ErrorTypeSource, "fileio.s3",
			fmt.Sprintf("%s is %d bytes, over the %d byte limit", key, size, s.opts.MaxFileSize))
	}
	if !s.cfg.Progress {
		return out.Body, size, nil
	}

	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("downloading "+key),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	return &progressReader{Reader: io.TeeReader(out.Body, bar), body: out.Body, bar: bar}, size, nil
}
