package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analyst-backend/internal/bootstrap"
	"analyst-backend/internal/executor"
	"analyst-backend/internal/llm"
	"analyst-backend/internal/shared/config"
)

func builderWith(client llm.Client) appBuilder {
	return func() (*bootstrap.App, error) {
		gin.SetMode(gin.TestMode)
		return bootstrap.BuildWithOptions(context.Background(), config.Config{}, bootstrap.Options{LLM: client})
	}
}

func testRunner() (*executor.Executor, error) {
	return bootstrap.NewExecutor(config.Config{}), nil
}

func execute(t *testing.T, build appBuilder, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, build, testRunner, stdin, args...)
}

func executeWith(t *testing.T, build appBuilder, runner runnerBuilder, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(build, runner)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAskPrintsParsedResult(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "```json\n[\"north\", 10]\n```", nil
	})
	path := writeFile(t, "sales.txt", "region,total\nnorth,10\n")

	out, err := execute(t, builderWith(client), "", "ask", "--file", path, "--question", "top region?")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":["north",10]}`, out)
}

func TestAskPrintsUpstreamErrorWithoutFailing(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("boom")
	})
	path := writeFile(t, "d.txt", "x")

	out, err := execute(t, builderWith(client), "", "ask", "-f", path, "-q", "q")
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"boom"}`, out)
}

func TestAskRejectsNonTxt(t *testing.T) {
	path := writeFile(t, "d.csv", "x")
	out, err := execute(t, builderWith(llm.PlaceholderClient{}), "", "ask", "-f", path, "-q", "q")
	require.Error(t, err)
	assert.JSONEq(t, `{"error":"Only .txt files are supported."}`, out)
}

func TestAskRequiresFlags(t *testing.T) {
	_, err := execute(t, builderWith(llm.PlaceholderClient{}), "", "ask")
	require.Error(t, err)
}

func TestRunCodeFromStdin(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	out, err := execute(t, builderWith(llm.PlaceholderClient{}), "print(6*7)\n", "run-code")
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "42\n", res["stdout"])
	assert.Equal(t, float64(0), res["returncode"])
}

func TestRunCodeRejectsStrayArgument(t *testing.T) {
	_, err := execute(t, builderWith(llm.PlaceholderClient{}), "", "run-code", "script.py")
	require.Error(t, err)
}

func TestRunCodeDoesNotBuildApp(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	noApp := func() (*bootstrap.App, error) {
		t.Fatalf("run-code must not build the application")
		return nil, nil
	}
	out, err := executeWith(t, noApp, testRunner, "print('ok')\n", "run-code")
	require.NoError(t, err)
	assert.Contains(t, out, `"stdout": "ok\n"`)
}

func TestRunCodeReportsRunnerError(t *testing.T) {
	failing := func() (*executor.Executor, error) { return nil, errors.New("bad config") }
	_, err := executeWith(t, builderWith(llm.PlaceholderClient{}), failing, "print(1)\n", "run-code")
	require.ErrorContains(t, err, "bad config")
}
