package xcmd

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitSignal(t *testing.T) {
	ch := make(chan os.Signal, 1)
	ch <- syscall.SIGTERM

	err := waitSignal(context.Background(), ch)
	require.Error(t, err)
	assert.True(t, IsInterrupted(err))
	assert.Equal(t, syscall.SIGTERM.String(), err.Error())
}

func TestWaitSignalCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitSignal(ctx, make(chan os.Signal))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsInterrupted(err))
}

func TestIsInterruptedWrapped(t *testing.T) {
	err := fmt.Errorf("shell stopped: %w", Interrupted{Signal: syscall.SIGINT})

	assert.True(t, IsInterrupted(err))
	assert.False(t, IsInterrupted(nil))
}
