// Package relay talks to the amman relay, the control plane the validator
// tooling exposes on a well-known local port. The supervisor only ever needs
// two requests from it: "what is the validator's pid" and "kill the
// validator". Everything else the relay offers is out of scope here.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultPort is the local port the relay listens on.
const DefaultPort = 50474

// Client is the request/response surface the supervisor consumes. A Client
// carries no supervision state and must be cheap to share between supervisor
// clones; implementations handle their own internal synchronization.
type Client interface {
	// RequestValidatorPid returns the pid of the validator the relay is
	// fronting. An error means the pid could not be determined, not
	// necessarily that no validator is running.
	RequestValidatorPid(ctx context.Context) (int, error)

	// RequestKill asks the relay to terminate the validator gracefully.
	RequestKill(ctx context.Context) error
}

// HTTPClient speaks JSON over HTTP to a local relay.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the relay at the given base URL, e.g.
// "http://127.0.0.1:50474". An empty URL selects the default local relay.
func NewHTTPClient(baseURL string) *HTTPClient {
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://127.0.0.1:%d", DefaultPort)
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

type reply struct {
	Result json.RawMessage `json:"result"`
	Err    string          `json:"err"`
}

// RequestValidatorPid implements Client.
func (c *HTTPClient) RequestValidatorPid(ctx context.Context) (int, error) {
	var pid int
	if err := c.call(ctx, http.MethodGet, "/relay/validator/pid", &pid); err != nil {
		return 0, err
	}
	return pid, nil
}

// RequestKill implements Client.
func (c *HTTPClient) RequestKill(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/relay/validator/kill", nil)
}

func (c *HTTPClient) call(ctx context.Context, method, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relay request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read relay response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay %s: status %d", path, resp.StatusCode)
	}

	var rep reply
	if err := json.Unmarshal(body, &rep); err != nil {
		return fmt.Errorf("decode relay response: %w", err)
	}
	if rep.Err != "" {
		return fmt.Errorf("relay %s: %s", path, rep.Err)
	}
	if result != nil {
		if len(rep.Result) == 0 {
			return fmt.Errorf("relay %s: empty result", path)
		}
		if err := json.Unmarshal(rep.Result, result); err != nil {
			return fmt.Errorf("decode relay result: %w", err)
		}
	}
	return nil
}
