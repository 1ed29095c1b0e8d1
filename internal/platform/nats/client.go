// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package nats provides a managed NATS connection with a JetStream context.

It backs the remote asset store: uploaded images, video and music live in a
JetStream ObjectStore bucket instead of on the API host's disk.

Core Responsibilities:

  - Connectivity: Dial with bounded timeouts and automatic reconnects.
  - Observability: Connection state changes are logged through slog.
  - Health: [Ping] flushes the connection for the readiness probe.
*/
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Opinionated connection settings.
const (
	connectTimeout = 5 * time.Second
	reconnectWait  = 2 * time.Second
	maxReconnects  = 60
	pingTimeout    = 2 * time.Second
)

// Client bundles the core connection and its JetStream context.
type Client struct {
	Conn      *nats.Conn
	JetStream jetstream.JetStream
}

// NewClient dials natsURL and creates a JetStream context.
//
// # Parameters
//   - natsURL: nats:// URL (comma separated for clusters).
//   - logger: Structured logger for connection events.
func NewClient(natsURL string, logger *slog.Logger) (*Client, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("reel-api"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logger.Info("nats_reconnected", slog.String("url", conn.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: connect: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("nats: jetstream context: %w", err)
	}

	logger.Info("nats client connected", slog.String("url", conn.ConnectedUrl()))

	return &Client{Conn: conn, JetStream: js}, nil
}

// Close drains in-flight messages and closes the connection.
func (client *Client) Close() error {
	return client.Conn.Drain()
}

// Ping verifies the server answers within pingTimeout.
func Ping(ctx context.Context, client *Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Conn.FlushWithContext(pingCtx); err != nil {
		return fmt.Errorf("nats: ping failed: %w", err)
	}
	return nil
}
