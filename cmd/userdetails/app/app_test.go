package app

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentstation/userdetails/pkg/logging"
	"github.com/agentstation/userdetails/pkg/store"
)

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

// TestApp_Store_Singleton verifies that Store() returns the same instance.
func TestApp_Store_Singleton(t *testing.T) {
	app, err := New("1.0.0", "test", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Store() != app.Store() {
		t.Error("Store() returned different instances, expected singleton")
	}
}

// TestApp_Store_ThreadSafe verifies concurrent Store() calls are safe.
func TestApp_Store_ThreadSafe(t *testing.T) {
	app, err := New("1.0.0", "test", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]*store.Store, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = app.Store()
		}(i)
	}
	wg.Wait()

	for i, s := range results {
		if s != results[0] {
			t.Fatalf("goroutine %d got a different store", i)
		}
	}
}

// TestApp_WithOptions verifies functional options.
func TestApp_WithOptions(t *testing.T) {
	custom := &Config{
		Format:      "json",
		SubmitDelay: 250 * time.Millisecond,
		SessionTTL:  time.Minute,
	}
	logger := logging.NewNopLogger()
	st := store.New(logger)

	app, err := New("1.0.0", "test", "2024-01-01", "test",
		WithConfig(custom),
		WithLogger(logger),
		WithStore(st),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Config() != custom {
		t.Error("WithConfig() did not set config")
	}
	if app.Logger() != logger {
		t.Error("WithLogger() did not set logger")
	}
	if app.Store() != st {
		t.Error("WithStore() did not set store")
	}
	if app.OutputFormat() != "json" {
		t.Errorf("OutputFormat() = %s, want json", app.OutputFormat())
	}
	if app.SubmitDelay() != 250*time.Millisecond {
		t.Errorf("SubmitDelay() = %s, want 250ms", app.SubmitDelay())
	}
	if app.SessionTTL() != time.Minute {
		t.Errorf("SessionTTL() = %s, want 1m", app.SessionTTL())
	}
}

// TestApp_Shutdown verifies graceful shutdown.
func TestApp_Shutdown(t *testing.T) {
	app, err := New("1.0.0", "test", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
}

// TestApp_ExecuteVersion runs the version command end to end.
func TestApp_ExecuteVersion(t *testing.T) {
	app, err := New("1.2.3", "abc123", "2024-01-01", "test", WithLogger(logging.NewNopLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "userdetails version 1.2.3") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

// TestApp_SetupCommandAppliesFlags verifies global flags reach the config.
func TestApp_SetupCommandAppliesFlags(t *testing.T) {
	app, err := New("1.0.0", "test", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--format", "yaml", "--quiet"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if app.OutputFormat() != "yaml" {
		t.Errorf("OutputFormat() = %s, want yaml", app.OutputFormat())
	}
	if !app.Config().Quiet {
		t.Error("Quiet flag not applied")
	}
}
