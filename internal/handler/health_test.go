package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestReady(t *testing.T) {
	e := newEcho()
	e.GET("/health", Health)
	e.GET("/ready/up", Ready(pingerFunc(func(context.Context) error { return nil })))
	e.GET("/ready/down", Ready(pingerFunc(func(context.Context) error { return errors.New("refused") })))

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/ready/up", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/ready/down", "").Code)
}
