package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tjweather/internal/config"
)

const forecastBody = `{"code":200,"message":"ok","data":{"units":{"t2m":"K","rh2m":"%"},"time_init":"2026-10-19 00:00","data":[{"time":"2026-10-19 08:00","t2m":288.25,"rh2m":51}]}}`

type testEnv struct {
	app    *App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	home   string
	work   string

	mu       sync.Mutex
	requests []url.Values
}

// newTestEnv isolates the app from the host: a temp home and working
// directory and no configuration variables.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, k := range []string{"API_KEY", "NC_ENDPOINT", "JSON_ENDPOINT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	env := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		home:   t.TempDir(),
		work:   t.TempDir(),
	}
	app := NewApp(env.stdout, env.stderr)
	app.newLoader = func(file string) *config.Loader {
		return &config.Loader{HomeDir: env.home, WorkDir: env.work, File: file}
	}
	app.homeDir = func() (string, error) { return env.home, nil }
	env.app = app
	return env
}

// upstream starts a fake API and points the local .env at it.
func (e *testEnv) upstream(t *testing.T, status int, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.mu.Lock()
		e.requests = append(e.requests, r.URL.Query())
		e.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	dotenv := "API_KEY=test-key\nJSON_ENDPOINT=" + srv.URL + "/beta\nNC_ENDPOINT=" + srv.URL + "/nc/beta\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.work, ".env"), []byte(dotenv), 0o600))
}

func (e *testEnv) run(args ...string) int {
	e.stdout.Reset()
	e.stderr.Reset()
	return e.app.Run(context.Background(), args)
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		status     int
		body       string
		wantCode   int
		wantCalls  int
		wantStdout []string
		wantStderr []string
		wantParams map[string]string
	}{
		{
			name:       "table output",
			args:       []string{"query", "-l", "116.23128,40.22077", "-f", "t2m,rh2m"},
			status:     http.StatusOK,
			body:       forecastBody,
			wantCode:   0,
			wantCalls:  1,
			wantStdout: []string{"Weather data (init time: 2026-10-19 00:00)", "288.25", "51.00"},
			wantParams: map[string]string{
				"loc":        "116.23128,40.22077",
				"fields":     "t2m,rh2m",
				"fcst_days":  "3",
				"fcst_hours": "0",
				"t_res":      "1h",
				"tz":         "8",
				"grid":       "1",
				"key":        "test-key",
			},
		},
		{
			name:       "hours shorthand and csv",
			args:       []string{"query", "-l", "300,10", "-d", "2", "-h", "6", "--format", "csv"},
			status:     http.StatusOK,
			body:       forecastBody,
			wantCalls:  1,
			wantStdout: []string{"# Weather data (init time: 2026-10-19 00:00)", "time,t2m,rh2m", "2026-10-19 08:00,288.25,51.00"},
			wantParams: map[string]string{"loc": "300,10", "fields": "t2m", "fcst_days": "2", "fcst_hours": "6"},
		},
		{
			name:       "json output",
			args:       []string{"query", "-l", "116.2,40.2", "--format", "json"},
			status:     http.StatusOK,
			body:       forecastBody,
			wantCalls:  1,
			wantStdout: []string{`"time_init": "2026-10-19 00:00"`},
		},
		{
			name:       "malformed numbers fall back to defaults",
			args:       []string{"query", "-l", "116.2,40.2", "-d", "abc", "-t", "x"},
			status:     http.StatusOK,
			body:       forecastBody,
			wantCalls:  1,
			wantParams: map[string]string{"fcst_days": "3", "tz": "8"},
		},
		{
			name:       "unknown field is rejected before the network",
			args:       []string{"query", "-l", "300,10", "-f", "t2m,bogus"},
			status:     http.StatusOK,
			body:       forecastBody,
			wantCode:   1,
			wantStderr: []string{"unsupported fields: bogus", "Common fields"},
		},
		{
			name:       "explicit empty field list is rejected",
			args:       []string{"query", "-l", "116.2,40.2", "-f", ""},
			status:     http.StatusOK,
			body:       forecastBody,
			wantCode:   1,
			wantStderr: []string{"unsupported fields: "},
		},
		{
			name:       "invalid location",
			args:       []string{"query", "-l", "116.2"},
			status:     http.StatusOK,
			body:       forecastBody,
			wantCode:   1,
			wantStderr: []string{"Error:", "Longitude range: [-180,180] or [0,360]"},
		},
		{
			name:       "missing location flag",
			args:       []string{"query"},
			status:     http.StatusOK,
			body:       forecastBody,
			wantCode:   1,
			wantStderr: []string{`required flag(s) "location" not set`},
		},
		{
			name:       "unknown format",
			args:       []string{"query", "-l", "116.2,40.2", "--format", "xml"},
			status:     http.StatusOK,
			body:       forecastBody,
			wantCode:   1,
			wantStderr: []string{"unsupported output format"},
		},
		{
			name:       "upstream error code",
			args:       []string{"query", "-l", "116.2,40.2"},
			status:     http.StatusOK,
			body:       `{"code":401,"message":"invalid key"}`,
			wantCode:   1,
			wantCalls:  1,
			wantStderr: []string{"query failed (401): invalid key"},
		},
		{
			name:       "no data is not a failure",
			args:       []string{"query", "-l", "116.2,40.2"},
			status:     http.StatusOK,
			body:       `{"code":200,"message":"ok","data":{"units":{},"time_init":"","data":[]}}`,
			wantCode:   0,
			wantCalls:  1,
			wantStdout: []string{"no data found"},
		},
		{
			name:       "non-json error body",
			args:       []string{"query", "-l", "116.2,40.2"},
			status:     http.StatusInternalServerError,
			body:       "boom",
			wantCode:   1,
			wantCalls:  1,
			wantStderr: []string{"fetch returned status 500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.upstream(t, tt.status, tt.body)

			code := env.run(tt.args...)

			assert.Equal(t, tt.wantCode, code, "stderr: %s", env.stderr.String())
			assert.Len(t, env.requests, tt.wantCalls)
			for _, s := range tt.wantStdout {
				assert.Contains(t, env.stdout.String(), s)
			}
			for _, s := range tt.wantStderr {
				assert.Contains(t, env.stderr.String(), s)
			}
			if len(tt.wantParams) > 0 {
				require.NotEmpty(t, env.requests)
				for k, v := range tt.wantParams {
					assert.Equal(t, v, env.requests[0].Get(k), "param %s", k)
				}
			}
		})
	}
}

func TestQuery_OutputFile(t *testing.T) {
	env := newTestEnv(t)
	env.upstream(t, http.StatusOK, forecastBody)
	out := filepath.Join(t.TempDir(), "result.csv")

	code := env.run("query", "-l", "116.2,40.2", "-f", "t2m,rh2m", "--format", "csv", "-o", out)
	require.Equal(t, 0, code, env.stderr.String())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "# Weather data"))
	assert.Contains(t, env.stdout.String(), "Results saved to: "+out)
}

func TestQuery_MissingAPIKey(t *testing.T) {
	env := newTestEnv(t)

	code := env.run("query", "-l", "not-a-location")

	assert.Equal(t, 1, code)
	assert.Contains(t, env.stderr.String(), "configuration error")
	assert.Contains(t, env.stderr.String(), "tjweather init")
}

func TestQuery_Verbose(t *testing.T) {
	env := newTestEnv(t)
	env.upstream(t, http.StatusOK, forecastBody)

	code := env.run("-v", "query", "-l", "116.2,40.2", "-r", "15min")
	require.Equal(t, 0, code, env.stderr.String())

	assert.Contains(t, env.stdout.String(), "Query parameters:")
	assert.Contains(t, env.stdout.String(), "Resolution: 15min")
	assert.Contains(t, env.stderr.String(), "level=DEBUG")
}

func TestDownload(t *testing.T) {
	payload := "CDF\x01payload"

	t.Run("generated file name", func(t *testing.T) {
		env := newTestEnv(t)
		env.upstream(t, http.StatusOK, payload)
		t.Chdir(env.work)

		code := env.run("download", "-l", "116.2,40.2", "-d", "2")
		require.Equal(t, 0, code, env.stderr.String())

		require.Len(t, env.requests, 1)
		assert.Equal(t, "true", env.requests[0].Get("download"))
		assert.Empty(t, env.requests[0].Get("filename"))

		entries, err := filepath.Glob(filepath.Join(env.work, "weather_116.2_40.2_d2_h0_*.nc"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		b, err := os.ReadFile(entries[0])
		require.NoError(t, err)
		assert.Equal(t, payload, string(b))
		assert.Contains(t, env.stdout.String(), "File size: 0.00 MB")
	})

	t.Run("explicit output and upstream name", func(t *testing.T) {
		env := newTestEnv(t)
		env.upstream(t, http.StatusOK, payload)
		out := filepath.Join(t.TempDir(), "out.nc")

		code := env.run("download", "-l", "116.2,40.2", "-o", out, "--filename", "remote.nc")
		require.Equal(t, 0, code, env.stderr.String())

		assert.Equal(t, "remote.nc", env.requests[0].Get("filename"))
		b, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, payload, string(b))
		assert.Contains(t, env.stdout.String(), "NetCDF file downloaded: "+out)
	})

	t.Run("upstream name does not change the local name", func(t *testing.T) {
		env := newTestEnv(t)
		env.upstream(t, http.StatusOK, payload)
		t.Chdir(env.work)

		code := env.run("download", "-l", "116.2,40.2", "--filename", "remote.nc")
		require.Equal(t, 0, code, env.stderr.String())

		assert.Equal(t, "remote.nc", env.requests[0].Get("filename"))
		assert.NoFileExists(t, filepath.Join(env.work, "remote.nc"))
		entries, err := filepath.Glob(filepath.Join(env.work, "weather_116.2_40.2_d3_h0_*.nc"))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("upstream failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.upstream(t, http.StatusForbidden, `{"code":403,"message":"quota exceeded"}`)

		code := env.run("download", "-l", "116.2,40.2", "-o", filepath.Join(t.TempDir(), "x.nc"))
		assert.Equal(t, 1, code)
		assert.Contains(t, env.stderr.String(), "NetCDF download failed: quota exceeded")
	})
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, 0, env.run("init"))
	assert.Contains(t, env.stdout.String(), "Configuration file created")

	path := config.UserConfigPath(env.home)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `API_KEY="YOUR_API_KEY_HERE"`)

	require.NoError(t, os.WriteFile(path, []byte("API_KEY=mine\n"), 0o600))
	require.Equal(t, 0, env.run("init"))
	assert.Contains(t, env.stdout.String(), "already exists")
	b, _ = os.ReadFile(path)
	assert.Equal(t, "API_KEY=mine\n", string(b))

	require.Equal(t, 0, env.run("init", "--force"))
	b, _ = os.ReadFile(path)
	assert.Contains(t, string(b), "YOUR_API_KEY_HERE")
}

func TestConfig(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, 0, env.run("config"))
	assert.Contains(t, env.stdout.String(), "API_KEY: not set")
	assert.Contains(t, env.stdout.String(), "Configuration problems:")
	assert.Contains(t, env.stdout.String(), "NC_ENDPOINT: "+config.DefaultNCEndpoint)

	explicit := filepath.Join(t.TempDir(), "custom.env")
	require.NoError(t, os.WriteFile(explicit, []byte("API_KEY=secret-key\n"), 0o600))

	require.Equal(t, 0, env.run("-c", explicit, "config"))
	assert.Contains(t, env.stdout.String(), "API_KEY: ***set***")
	assert.NotContains(t, env.stdout.String(), "secret-key")
	assert.Contains(t, env.stdout.String(), "Configuration is valid")

	require.Equal(t, 0, env.run("-c", explicit, "config", "--show-secret"))
	assert.Contains(t, env.stdout.String(), "API_KEY: secret-key")

	assert.Equal(t, 1, env.run("-c", filepath.Join(t.TempDir(), "missing.env"), "config"))
	assert.Contains(t, env.stderr.String(), "failed to load config")
}

func TestFields(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, 0, env.run("fields"))
	assert.Contains(t, env.stdout.String(), "gust")
	assert.Contains(t, env.stdout.String(), "ws70m")

	require.Equal(t, 0, env.run("fields", "--region", "china"))
	assert.NotContains(t, env.stdout.String(), "t2m")

	assert.Equal(t, 1, env.run("fields", "--region", "mars"))
}

func TestVersionAndUnknownCommand(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, 0, env.run("version"))
	assert.Contains(t, env.stdout.String(), "Version: ")
	assert.Contains(t, env.stdout.String(), appHomepage)

	assert.Equal(t, 1, env.run("forecast"))
	assert.Contains(t, env.stderr.String(), "unknown command")
}
