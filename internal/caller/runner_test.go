package caller

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecRunnerCapturesStdout(t *testing.T) {
	skipOnWindows(t)

	res, err := ExecRunner{}.Run(context.Background(),
		[]string{"echo", "hello"}, nil, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(res.Stdout))
	assert.Zero(t, res.Retcode)
}

func TestExecRunnerForwardsStdin(t *testing.T) {
	skipOnWindows(t)

	res, err := ExecRunner{}.Run(context.Background(),
		[]string{"cat"}, []byte("payload"), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(res.Stdout))
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	res, err := ExecRunner{}.Run(context.Background(),
		[]string{"sh", "-c", "exit 3"}, nil, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Retcode)
}

func TestExecRunnerTimeout(t *testing.T) {
	skipOnWindows(t)

	_, err := ExecRunner{}.Run(context.Background(),
		[]string{"sleep", "10"}, nil, 100*time.Millisecond)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "timed out"), "got: %v", err)
}

func TestExecRunnerStartFailure(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(),
		[]string{"/nonexistent/binary"}, nil, time.Second)
	assert.Error(t, err)
}

func TestExecRunnerEmptyCommand(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), nil, nil, time.Second)
	assert.Error(t, err)
}
