package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/LSUDOKO/DeleGator.AI/internal/config"
	"github.com/LSUDOKO/DeleGator.AI/internal/observability/metrics"
)

// SecretHeader authenticates relayed events against the backend ingestion
// endpoint.
const SecretHeader = "X-Envio-Secret"

// Envelope is the wire form of a relayed event. Big-integer fields are
// stringified so nothing loses precision in JSON.
type Envelope struct {
	ChainID         uint64         `json:"chainId"`
	EventName       string         `json:"eventName"`
	BlockNumber     string         `json:"blockNumber"`
	TransactionHash string         `json:"transactionHash"`
	LogIndex        uint64         `json:"logIndex"`
	Data            map[string]any `json:"data"`
}

type Client struct {
	cfg        *config.RelayConfig
	httpClient *http.Client
}

func NewClient(cfg *config.RelayConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Notify delivers one envelope to the backend ingestion endpoint. Delivery
// is best-effort: any transport or HTTP failure is logged and swallowed, the
// already-applied local mutation is never rolled back and the relay itself
// never retries. Replay of the upstream log is the only recovery path for a
// dropped notification.
func (c *Client) Notify(ctx context.Context, envelope *Envelope) {
	if err := c.send(ctx, envelope); err != nil {
		metrics.RecordRelayError()
		log.Ctx(ctx).Error().
			Err(err).
			Str("event_name", envelope.EventName).
			Uint64("chain_id", envelope.ChainID).
			Str("tx_hash", envelope.TransactionHash).
			Msg("Failed to notify backend")
	}
}

func (c *Client) send(ctx context.Context, envelope *Envelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SecretHeader, c.cfg.Secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver envelope: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("backend webhook failed: %s", resp.Status)
	}

	return nil
}
