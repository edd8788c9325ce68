// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps a Zeebe gRPC connection. The worker manager shares one
// connection between job polling and the broker health checks the admin
// handlers expose.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig controls connection and health-check behavior.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
}

// DefaultClientConfig returns the settings used when the caller does not
// supply its own.
func DefaultClientConfig(address string) *ClientConfig {
	return &ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true, // TLS is configured at the gateway in production
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         30 * time.Second,
	}
}

// NewClient dials the broker at the given address with default settings
// and verifies the connection with a topology request.
func NewClient(address string) (*Client, error) {
	return NewClientWithConfig(DefaultClientConfig(address))
}

// NewClientWithConfig dials the broker using explicit settings. The
// connection is probed before being returned so a bad address fails fast.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}

	return &Client{client: zeebeClient, config: config}, nil
}

// FromZeebe wraps an already-connected Zeebe client. Closing the returned
// Client closes the shared connection, so the owner of the connection
// should be the one to call Close.
func FromZeebe(client zbc.Client) *Client {
	return &Client{
		client: client,
		config: DefaultClientConfig(""),
	}
}

// GetClient exposes the raw Zeebe client for job polling.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck sends a topology request to verify the broker is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
