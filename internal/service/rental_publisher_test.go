package service

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	q "github.com/iliyamo/video-rental/internal/queue"
)

// silentBroker accepts TCP connections and never answers the AMQP
// handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestPublish_HandshakeHonoursDeadline(t *testing.T) {
	p := NewRentalPublisher(silentBroker(t), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Publish(ctx, q.RentalEvent{EventID: "e-1", Type: q.EventRentalOpened})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPublish_CancelledContextSkipsDial(t *testing.T) {
	p := NewRentalPublisher(silentBroker(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, q.RentalEvent{EventID: "e-2", Type: q.EventRentalOpened})
	require.Error(t, err)
}
