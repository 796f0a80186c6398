package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ordering/internal/core/ports"
)

const (
	defaultProviderTimeout = 8 * time.Second

	maxResponseBytes = 1 << 20
)

// doJSON performs one JSON round trip against a provider API. A 4xx answer
// wraps ports.ErrPosRejected so callers can distinguish "the provider said
// no" from transport trouble worth retrying.
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, url, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, url, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s %s: provider unavailable (status %d)", method, url, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s %s: status %d: %s: %w",
			method, url, resp.StatusCode, strings.TrimSpace(string(raw)), ports.ErrPosRejected)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, url, err)
		}
	}
	return nil
}
