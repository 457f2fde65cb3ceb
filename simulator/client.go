package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cyberguard/ml"
)

// Response mirrors the prediction endpoint. Details is filled in by the
// client when the call itself failed.
type Response struct {
	Prediction string `json:"prediction"`
	Status     string `json:"status,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Details    string `json:"details,omitempty"`
}

type Client struct {
	url    string
	client *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	url := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(url, "/predict") {
		url += "/predict"
	}
	return &Client{url: url, client: &http.Client{Timeout: timeout}}
}

// Predict never returns an error: failures come back as an Error prediction
// with the reason in Details.
func (c *Client) Predict(ctx context.Context, features ml.FeatureMap) Response {
	body, err := json.Marshal(map[string]ml.FeatureMap{"features": features})
	if err != nil {
		return errorResponse(err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errorResponse(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errorResponse(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorResponse(fmt.Sprintf("Status %d", resp.StatusCode))
	}
	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errorResponse(err.Error())
	}
	return result
}

func errorResponse(details string) Response {
	return Response{Prediction: string(ml.LabelError), Details: details}
}
