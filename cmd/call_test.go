package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combell-mcp/internal/app"
	"combell-mcp/internal/cli"
	"combell-mcp/internal/config"
)

func fakeCombellAPI(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "hmac cli-key:") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v2/domains":
			w.Header().Set("X-Paging-TotalResults", "2")
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"domain_name": "example.com", "expiration_date": "2030-01-01T00:00:00Z", "will_renew": true},
				{"domain_name": "example.org", "expiration_date": "2031-06-01T00:00:00Z", "will_renew": false},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "not found"})
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func combellEnv(ts *httptest.Server) map[string]string {
	return map[string]string{
		config.EnvCombellAPIKey:    "cli-key",
		config.EnvCombellAPISecret: "cli-secret",
		config.EnvCombellAPIURL:    ts.URL + "/v2",
	}
}

func TestCallCommand_JSON(t *testing.T) {
	withEnv(t, combellEnv(fakeCombellAPI(t)))

	stdout, _, err := runCommand(t, "call", "domains", "-o", "json", "-q")
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, float64(2), payload["total_count"])
}

func TestCallCommand_Table(t *testing.T) {
	withEnv(t, combellEnv(fakeCombellAPI(t)))

	stdout, _, err := runCommand(t, "call", "domains", "page_size=50", "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "example.com")
	assert.Contains(t, stdout, "example.org")
}

func TestCallCommand_MissingCredentials(t *testing.T) {
	withEnv(t, nil)

	_, _, err := runCommand(t, "call", "domains")
	assert.ErrorIs(t, err, app.ErrMissingCredentials)
	assert.Equal(t, ExitCodeMissingCredentials, getExitCode(err))
}

func TestCallCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no tool", []string{"call"}, "requires at least 1 arg"},
		{"unknown tool", []string{"call", "reboot_everything"}, `unknown tool "reboot_everything"`},
		{"bad output", []string{"call", "domains", "-o", "xml"}, "unsupported output format"},
		{"unknown argument", []string{"call", "domain", "domian=example.com"}, "domian"},
		{"missing required argument", []string{"call", "domain"}, "domain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEnv(t, combellEnv(fakeCombellAPI(t)))
			_, _, err := runCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitCodeError, getExitCode(err))
		})
	}
}

func TestCallCommand_ToolFailure(t *testing.T) {
	withEnv(t, combellEnv(fakeCombellAPI(t)))

	_, _, err := runCommand(t, "call", "account", "account_id=42", "-q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account")
}

func TestCallCommand_HelpExamplesParse(t *testing.T) {
	application, err := app.NewApplication(&app.Config{
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
		Offline:    true,
		LogLevel:   "warn",
		Lookup:     func(string) (string, bool) { return "", false },
	})
	require.NoError(t, err)

	executor, err := cli.NewToolExecutor(application.MCPServer(), cli.ExecutorOptions{Quiet: true})
	require.NoError(t, err)
	defer executor.Close()
	ctx := context.Background()
	require.NoError(t, executor.Connect(ctx))

	var examples int
	for _, line := range strings.Split(newCallCmd(&globalOptions{}).Long, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != "combell-mcp" || fields[1] != "call" {
			continue
		}
		examples++

		var pairs []string
		for _, f := range fields[3:] {
			if strings.Contains(f, "=") {
				pairs = append(pairs, f)
			}
		}

		tool, err := executor.Tool(ctx, fields[2])
		require.NoError(t, err, line)
		_, err = cli.ParseArgs(tool, pairs)
		assert.NoError(t, err, line)
	}
	assert.NotZero(t, examples)
}
