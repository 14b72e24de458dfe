package executor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(DefaultInterpreter); err != nil {
		t.Skipf("%s not available: %v", DefaultInterpreter, err)
	}
}

func TestRunCapturesStdout(t *testing.T) {
	requirePython(t)
	res := New(Config{}).Run(context.Background(), `print("hi")`)

	require.NoError(t, res.Err)
	assert.Equal(t, "hi\n", res.Stdout)
	assert.Equal(t, "", res.Stderr)
	assert.Equal(t, 0, res.ReturnCode)
}

func TestRunReportsNonZeroExitAsData(t *testing.T) {
	requirePython(t)
	res := New(Config{}).Run(context.Background(), "import sys\nsys.stderr.write('bad\\n')\nsys.exit(3)")

	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.ReturnCode)
	assert.Equal(t, "bad\n", res.Stderr)
}

func TestRunTimesOut(t *testing.T) {
	requirePython(t)
	start := time.Now()
	res := New(Config{Timeout: 300 * time.Millisecond}).Run(context.Background(), "import time\ntime.sleep(30)")

	require.ErrorIs(t, res.Err, ErrTimeout)
	assert.Less(t, time.Since(start), 10*time.Second)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"execution timed out after 300ms"}`, string(out))
}

func TestRunKillsChildProcessesOnTimeout(t *testing.T) {
	requirePython(t)
	code := "import subprocess, sys, time\n" +
		"subprocess.Popen([sys.executable, '-c', 'import time; time.sleep(30)'])\n" +
		"time.sleep(30)\n"
	start := time.Now()
	res := New(Config{Timeout: 300 * time.Millisecond}).Run(context.Background(), code)

	require.ErrorIs(t, res.Err, ErrTimeout)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunRemovesTempFile(t *testing.T) {
	requirePython(t)
	dir := t.TempDir()
	res := New(Config{TempDir: dir}).Run(context.Background(), "import sys\nprint(sys.argv[0])")
	require.NoError(t, res.Err)

	scriptPath := strings.TrimSpace(res.Stdout)
	assert.Equal(t, dir, filepath.Dir(scriptPath))
	assert.True(t, strings.HasSuffix(scriptPath, ".py"))
	_, err := os.Stat(scriptPath)
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file still present: %v", err)
}

func TestRunReportsLaunchFailure(t *testing.T) {
	dir := t.TempDir()
	res := New(Config{Interpreter: "definitely-not-an-interpreter-xyz", TempDir: dir}).Run(context.Background(), "print(1)")

	require.ErrorIs(t, res.Err, ErrLaunch)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(out, &body))
	assert.Len(t, body, 1)
	assert.Contains(t, body["error"], "failed to launch interpreter")
}

func TestRunReportsTempFileFailure(t *testing.T) {
	res := New(Config{TempDir: filepath.Join(t.TempDir(), "missing")}).Run(context.Background(), "print(1)")
	require.ErrorIs(t, res.Err, ErrTempFile)
}

func TestRunCapsOutput(t *testing.T) {
	requirePython(t)
	res := New(Config{MaxOutputBytes: 10}).Run(context.Background(), "print('x' * 100000)")

	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.ReturnCode)
	assert.Equal(t, strings.Repeat("x", 10), res.Stdout)
	assert.True(t, res.Truncated)
}

func TestInterpreterArgsPrecedeScript(t *testing.T) {
	requirePython(t)
	res := New(Config{Interpreter: "python3 -u"}).Run(context.Background(), "print('unbuffered')")
	require.NoError(t, res.Err)
	assert.Equal(t, "unbuffered\n", res.Stdout)
}

func TestResultMarshalCompletedRun(t *testing.T) {
	out, err := json.Marshal(Result{Stdout: "a\n", Stderr: "", ReturnCode: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stdout":"a\n","stderr":"","returncode":1}`, string(out))
}

func TestLimitedWriterReportsFullLength(t *testing.T) {
	w := &limitedWriter{limit: 4}
	n, err := w.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	n, _ = w.Write([]byte("gh"))
	assert.Equal(t, 2, n)
	assert.Equal(t, "abcd", w.String())
	assert.True(t, w.truncated)
}
