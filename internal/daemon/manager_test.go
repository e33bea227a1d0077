// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/NEPXiss/rescue-mission/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() config.AppConfig {
	cfg := config.Default()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewManagerRequiresAPIHandler(t *testing.T) {
	_, err := NewManager(testConfig(), Deps{Logger: zerolog.Nop()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIHandler)
}

func TestShutdownBeforeStart(t *testing.T) {
	m, err := NewManager(testConfig(), Deps{Logger: zerolog.Nop(), APIHandler: okHandler()})
	require.NoError(t, err)

	err = m.Shutdown(context.Background())
	assert.ErrorIs(t, err, ErrManagerNotStarted)
}

func TestStartAndCancel(t *testing.T) {
	m, err := NewManager(testConfig(), Deps{Logger: zerolog.Nop(), APIHandler: okHandler()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop after cancel")
	}
}

func TestShutdownHooksRunLIFO(t *testing.T) {
	m, err := NewManager(testConfig(), Deps{Logger: zerolog.Nop(), APIHandler: okHandler()})
	require.NoError(t, err)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		m.RegisterShutdownHook(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestShutdownCollectsHookErrors(t *testing.T) {
	m, err := NewManager(testConfig(), Deps{Logger: zerolog.Nop(), APIHandler: okHandler()})
	require.NoError(t, err)

	hookErr := assert.AnError
	m.RegisterShutdownHook("broken", func(context.Context) error { return hookErr })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	err = <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, hookErr)
}

func TestShutdownIsIdempotent(t *testing.T) {
	m, err := NewManager(testConfig(), Deps{Logger: zerolog.Nop(), APIHandler: okHandler()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	// A second shutdown after the manager stopped is a no-op.
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestAppRequiresManager(t *testing.T) {
	app := NewApp(zerolog.Nop(), nil, nil)
	err := app.Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingManager)
}

func TestAppRunAndCancel(t *testing.T) {
	m, err := NewManager(testConfig(), Deps{Logger: zerolog.Nop(), APIHandler: okHandler()})
	require.NoError(t, err)

	app := NewApp(zerolog.Nop(), m, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
