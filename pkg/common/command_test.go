package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSRunnerCapturesOutput(t *testing.T) {
	result, err := OSRunner{}.Run(context.Background(), "sh", "-c", "echo out; echo err 1>&2")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
}

func TestOSRunnerNonZeroExitIsNotAnError(t *testing.T) {
	result, err := OSRunner{}.Run(context.Background(), "sh", "-c", "exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
}

func TestOSRunnerDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := OSRunner{}.Run(ctx, "sleep", "5")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestOSRunnerMissingBinary(t *testing.T) {
	result, err := OSRunner{}.Run(context.Background(), "definitely-not-a-real-binary")
	assert.Error(t, err)
	assert.Equal(t, -1, result.ExitCode)
}
