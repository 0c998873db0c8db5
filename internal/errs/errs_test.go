package errs

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindsSurviveWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("run: %w", Capacity("sizes", "requested %d of %d", 12, 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapacity)
	assert.NotErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "requested 12 of 10")

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "sizes", e.Op)
}

func TestIOKeepsCause(t *testing.T) {
	t.Parallel()

	assert.NoError(t, IO("open", nil))

	err := IO("open input", fmt.Errorf("open x: %w", os.ErrNotExist))
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"config", Config("sizes", "bad"), ExitFailure},
		{"consistency", Consistency("load", "empty"), ExitFailure},
		{"plain", errors.New("boom"), ExitFailure},
		{"invariant", fmt.Errorf("emit: %w", Invariant("route", "no sink")), ExitInvariant},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ExitCode(c.err))
		})
	}
}

func TestErrorMessageShapes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "configuration error", (&Error{Kind: ErrConfig}).Error())
	assert.Equal(t, "configuration error: sizes", (&Error{Kind: ErrConfig, Op: "sizes"}).Error())
	assert.Equal(t, "i/o error: boom", (&Error{Kind: ErrIO, Err: errors.New("boom")}).Error())
}
