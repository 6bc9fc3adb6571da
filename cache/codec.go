package cache

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"github.com/AssilKherfi/Retention-Dashboard/calculations"
)

// Codec turns pipeline results into cache bytes and back
type Codec interface {
	Encode(res *calculations.Result) ([]byte, error)
	Decode(data []byte) (*calculations.Result, error)
}

// JSONCodec stores results as JSON encoded by sonic
type JSONCodec struct {
	api sonic.API
}

// NewJSONCodec creates the default codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{api: sonic.ConfigDefault}
}

// Encode marshals res
func (c *JSONCodec) Encode(res *calculations.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("nil result")
	}
	return c.api.Marshal(res)
}

// Decode unmarshals a result
func (c *JSONCodec) Decode(data []byte) (*calculations.Result, error) {
	var res calculations.Result
	if err := c.api.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// gzip member header
var gzipMagic = []byte{0x1f, 0x8b}

// GzipCodec compresses the output of another codec. Entries written
// before compression was turned on are still decoded.
type GzipCodec struct {
	inner Codec
	level int
}

// NewGzipCodec wraps inner, an out of range level falls back to the default
func NewGzipCodec(inner Codec, level int) *GzipCodec {
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	return &GzipCodec{inner: inner, level: level}
}

// Encode compresses the inner encoding
func (c *GzipCodec) Encode(res *calculations.Result) ([]byte, error) {
	data, err := c.inner.Encode(res)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode inflates data when it is gzip, then hands it to the inner codec
func (c *GzipCodec) Decode(data []byte) (*calculations.Result, error) {
	if !bytes.HasPrefix(data, gzipMagic) {
		return c.inner.Decode(data)
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	return c.inner.Decode(plain)
}
