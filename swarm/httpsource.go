package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// HTTPSource queries a signal service over HTTP:
//
//	GET {base}/analyze?symbol=SYM
//	-> {"signal": "BUY", "confidence": 0.82, "price": 412.5, "reason": "..."}
//
// The caller is expected to wrap it in a GuardedSource; the raw client
// carries no timeout or breaker of its own beyond the request context.
type HTTPSource struct {
	base   string
	client *http.Client
}

func NewHTTPSource(base string) *HTTPSource {
	return &HTTPSource{base: base, client: &http.Client{}}
}

func (s *HTTPSource) Analyze(ctx context.Context, symbol string) (Signal, error) {
	u := fmt.Sprintf("%s/analyze?symbol=%s", s.base, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Signal{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Signal{}, fmt.Errorf("signal source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Signal{}, fmt.Errorf("signal source: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Signal     string  `json:"signal"`
		Confidence float64 `json:"confidence"`
		Price      float64 `json:"price"`
		Reason     string  `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Signal{}, fmt.Errorf("signal source: decode: %w", err)
	}

	action := Action(body.Signal)
	switch action {
	case ActionBuy, ActionSell, ActionHold:
	default:
		action = ActionHold
	}

	return Signal{
		Action:     action,
		Confidence: body.Confidence,
		Price:      body.Price,
		Reason:     body.Reason,
	}, nil
}
