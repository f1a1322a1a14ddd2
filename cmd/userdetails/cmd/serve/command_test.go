package serve

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/userdetails/cmd/application"
	"github.com/agentstation/userdetails/internal/server"
	"github.com/agentstation/userdetails/pkg/constants"
)

func newMock() *application.Mock {
	return &application.Mock{
		SubmitDelayFunc: func() time.Duration { return 2 * time.Second },
		SessionTTLFunc:  func() time.Duration { return 10 * time.Minute },
	}
}

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_HOST", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("RATE_LIMIT", "")

	cmd := NewCommand(newMock())
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultHost, cfg.Host)
	assert.Equal(t, constants.DefaultPort, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.PathPrefix)
	assert.Equal(t, 2*time.Second, cfg.SubmitDelay)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, constants.DefaultRateLimit, cfg.RateLimit)
	assert.True(t, cfg.MetricsEnabled)
	assert.Zero(t, cfg.WriteTimeout)
}

func TestParseConfigFlags(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")

	cmd := NewCommand(newMock())
	require.NoError(t, cmd.ParseFlags([]string{
		"--port", "3000",
		"--host", "0.0.0.0",
		"--submit-delay", "500ms",
		"--session-ttl", "1m",
		"--rate-limit", "0",
		"--cors-origins", "https://a.example,https://b.example",
		"--metrics=false",
		"--prefix", "/api/v2",
	}))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port, "flags win over HTTP_PORT")
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 500*time.Millisecond, cfg.SubmitDelay)
	assert.Equal(t, time.Minute, cfg.SessionTTL)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "/api/v2", cfg.PathPrefix)
}

func TestParseConfigEnvironment(t *testing.T) {
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RATE_LIMIT", "5")

	cmd := NewCommand(newMock())
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5, cfg.RateLimit)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  string
		args []string
	}{
		{name: "bad env port", env: "http", args: nil},
		{name: "port out of range", args: []string{"--port", "70000"}},
		{name: "negative delay", args: []string{"--submit-delay", "-1s"}},
		{name: "zero ttl", args: []string{"--session-ttl", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HTTP_PORT", tt.env)
			t.Setenv("RATE_LIMIT", "")

			cmd := NewCommand(newMock())
			require.NoError(t, cmd.ParseFlags(tt.args))

			_, err := parseConfig(cmd)
			assert.Error(t, err)
		})
	}
}

func TestParsePort(t *testing.T) {
	port, err := parsePort("8080")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	_, err = parsePort("0")
	assert.Error(t, err)
	_, err = parsePort("abc")
	assert.Error(t, err)
}

func TestStartWithGracefulShutdown(t *testing.T) {
	app := newMock()
	cfg := server.DefaultConfig()
	cfg.RateLimit = 0

	srv, err := server.New(app, cfg)
	require.NoError(t, err)
	srv.Start()

	httpServer := &http.Server{Addr: "127.0.0.1:0", Handler: srv.Handler()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- startWithGracefulShutdown(ctx, httpServer, srv, app.Logger())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
