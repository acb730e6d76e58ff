package main

import (
	"context"
	"credit-api/internal/config"
	"credit-api/internal/event"
	"credit-api/internal/infrastructure/logging"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

var quietLogger = config.LoggerConfig{Level: "error", Encoding: "text"}

func TestInitializeApp(t *testing.T) {
	cfg, log := initializeApp()

	assert.NotNil(t, cfg, "Config should not be nil")
	assert.NotNil(t, log, "Logger should not be nil")
}

func TestStartServer(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:         0,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
	}
	logger := logging.NewLogger(quietLogger)

	srv, serverErrors, shutdownChan := startServer(cfg, http.NewServeMux(), logger)

	require.NotNil(t, srv, "Server should not be nil")
	assert.NotNil(t, serverErrors, "Server errors channel should not be nil")
	assert.NotNil(t, shutdownChan, "Shutdown channel should not be nil")
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestHandleShutdown(t *testing.T) {
	logger := logging.NewLogger(quietLogger)
	srv := &http.Server{}
	shutdownChan := make(chan os.Signal, 1)
	serverErrors := make(chan error, 1)

	shutdownChan <- syscall.SIGINT
	serverErrors <- nil

	var order []string
	handleShutdown(srv, shutdownChan, serverErrors, logger,
		func() { order = append(order, "rabbitmq") },
		func() { order = append(order, "redis") },
	)

	assert.Equal(t, []string{"rabbitmq", "redis"}, order)
}

func TestHandleShutdown_ServerFailure(t *testing.T) {
	logger := logging.NewLogger(quietLogger)
	serverErrors := make(chan error, 1)
	serverErrors <- errors.New("address already in use")

	closed := false
	handleShutdown(&http.Server{}, make(chan os.Signal), serverErrors, logger, func() { closed = true })

	assert.True(t, closed)
}

func TestInitializeEventPublisher_WithoutBroker(t *testing.T) {
	logger := logging.NewLogger(quietLogger)
	cfg := &config.Config{RabbitMQ: config.RabbitMQConfig{Enabled: false}}

	pub := initializeEventPublisher(cfg, setupRabbitMQ(cfg, logger), logger)

	require.IsType(t, &event.BreakerPublisher{}, pub)
	assert.NoError(t, pub.PublishCreditCreated(context.Background(), event.CreditCreatedEvent{}))
}

func TestInitializeRedisClient_Disabled(t *testing.T) {
	logger := logging.NewLogger(quietLogger)

	assert.Nil(t, initializeRedisClient(&config.Config{}, logger))
}

func TestInitializeRedisClient_UnreachableFallsBack(t *testing.T) {
	logger := logging.NewLogger(quietLogger)
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: true, Addr: "127.0.0.1:1"}}

	assert.Nil(t, initializeRedisClient(cfg, logger))
}

func TestDatabaseHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	assert.NoError(t, databaseHealth(stubPinger{})(req))
	assert.Error(t, databaseHealth(stubPinger{err: errors.New("down")})(req))
}
