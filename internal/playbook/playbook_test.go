package playbook

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIncludesRetcode(t *testing.T) {
	var gotArgv []string
	runner := New(func(_ context.Context, rundir string, argv []string) (map[string]any, error) {
		gotArgv = argv
		assert.Empty(t, rundir)
		return map[string]any{"retcode": 0, "stdout": `{"foo": "bar"}`}, nil
	}, "", nil)

	ret, err := runner.Run(context.Background(), "fake-playbook.yml", Options{})
	require.NoError(t, err)

	assert.Contains(t, ret, "retcode")
	assert.Equal(t, "bar", ret["foo"])
	assert.Equal(t, []string{"ansible-playbook", "fake-playbook.yml", "--forks", "5"}, gotArgv)
}

func TestRunNonJSONStdoutPassesThrough(t *testing.T) {
	runner := New(func(_ context.Context, _ string, _ []string) (map[string]any, error) {
		return map[string]any{"retcode": 2, "stdout": "PLAY RECAP ****"}, nil
	}, "", nil)

	ret, err := runner.Run(context.Background(), "site.yml", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, ret["retcode"])
	assert.Equal(t, "PLAY RECAP ****", ret["stdout"])
}

func TestRunMissingRetcode(t *testing.T) {
	runner := New(func(_ context.Context, _ string, _ []string) (map[string]any, error) {
		return map[string]any{"stdout": "{}"}, nil
	}, "", nil)

	_, err := runner.Run(context.Background(), "site.yml", Options{})
	assert.ErrorIs(t, err, ErrNoRetcode)
}

func TestRunExecutorFailurePropagates(t *testing.T) {
	boom := errors.New("spawn failed")
	runner := New(func(_ context.Context, _ string, _ []string) (map[string]any, error) {
		return nil, boom
	}, "", nil)

	_, err := runner.Run(context.Background(), "site.yml", Options{})
	assert.ErrorIs(t, err, boom)
}

func TestRunRequiresPlaybook(t *testing.T) {
	runner := New(ExecCommand, "", nil)
	_, err := runner.Run(context.Background(), "", Options{})
	assert.Error(t, err)
}

func TestCommandLineFlags(t *testing.T) {
	runner := New(ExecCommand, "ansible-playbook", nil)
	argv, err := runner.commandLine("site.yml", Options{
		Check:       true,
		Diff:        true,
		FlushCache:  true,
		SyntaxCheck: true,
		Forks:       10,
		Inventory:   "hosts.ini",
		Limit:       "webservers",
		Tags:        []string{"deploy"},
		SkipTags:    []string{"debug"},
		StartAtTask: "restart services",
		ExtraVars:   map[string]any{"version": "1.2.3"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ansible-playbook", "site.yml",
		"--check", "--diff", "--flush-cache", "--syntax-check",
		"--forks", "10",
		"--inventory", "hosts.ini",
		"--limit", "webservers",
		"--tags", "deploy",
		"--skip-tags", "debug",
		"--start-at-task", "restart services",
		"--extra-vars", `{"version":"1.2.3"}`,
	}, argv)
}

func TestExecCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	t.Run("success", func(t *testing.T) {
		out, err := ExecCommand(context.Background(), "", []string{"echo", "hi"})
		require.NoError(t, err)
		assert.Equal(t, 0, out["retcode"])
		assert.Equal(t, "hi\n", out["stdout"])
	})

	t.Run("nonzero exit", func(t *testing.T) {
		out, err := ExecCommand(context.Background(), "", []string{"sh", "-c", "exit 4"})
		require.NoError(t, err)
		assert.Equal(t, 4, out["retcode"])
	})

	t.Run("start failure", func(t *testing.T) {
		_, err := ExecCommand(context.Background(), "", []string{"/no/such/bin"})
		assert.Error(t, err)
	})
}
