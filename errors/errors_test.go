package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	cause := stderrors.New("connection refused")

	assert.Equal(t, "fx.Rate: connection refused", Wrap(ErrorTypeNetwork, "fx.Rate", cause).Error())
	assert.Equal(t, "config.Load: bad port", New(ErrorTypeConfig, "config.Load", "bad port").Error())
	assert.Equal(t, "fileio.Load: open orders.csv: connection refused",
		Wrapf(ErrorTypeSource, "fileio.Load", cause, "open %s", "orders.csv").Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(ErrorTypeSource, "op", nil))
	assert.NoError(t, Wrapf(ErrorTypeSource, "op", nil, "x"))
}

func TestIsType(t *testing.T) {
	inner := Wrap(ErrorTypeNetwork, "fx.fetch", stderrors.New("timeout"))
	outer := fmt.Errorf("resolve rate: %w", Wrap(ErrorTypeSource, "app.Analyze", inner))

	assert.True(t, IsType(outer, ErrorTypeSource))
	assert.True(t, IsType(outer, ErrorTypeNetwork))
	assert.False(t, IsType(outer, ErrorTypeConfig))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeConfig))
	assert.Equal(t, ErrorTypeSource, TypeOf(outer))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}

func TestUnwrap(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := Wrap(ErrorTypeDataFormat, "parse", sentinel)

	assert.True(t, Is(err, sentinel))

	var typed *Error
	require.True(t, As(err, &typed))
	assert.Equal(t, ErrorTypeDataFormat, typed.Type)
	assert.Equal(t, "high", typed.Severity.String())
}

func TestSafeRun(t *testing.T) {
	err := SafeRun("job", func() error { panic("boom") })

	var p *PanicError
	require.True(t, stderrors.As(err, &p))
	assert.Equal(t, "boom", p.Value)
	assert.NotEmpty(t, p.Stack)
	assert.Contains(t, err.Error(), "job: panic: boom")

	want := stderrors.New("plain")
	assert.Equal(t, want, SafeRun("job", func() error { return want }))
	assert.NoError(t, SafeRun("job", func() error { return nil }))
}

func TestErrorCollector(t *testing.T) {
	ec := NewErrorCollector(2)

	ec.Collect(stderrors.New("a"))
	ec.Collect(nil)
	ec.Collect(stderrors.New("b"))
	ec.Collect(stderrors.New("c"))

	assert.Len(t, ec.GetErrors(), 2)
	assert.Equal(t, 3, ec.Count())

	ec.Clear()
	assert.Empty(t, ec.GetErrors())
	assert.Equal(t, 0, ec.Count())
}
