package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Dan9191/loan-risk-service/internal/config"
	"github.com/Dan9191/loan-risk-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Client scores features against a remote model server
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new inference client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.ModelURL,
		client: &http.Client{
			Timeout: cfg.ModelTimeout,
		},
		log: log,
	}
}

type dataframeSplit struct {
	Columns []string    `json:"columns"`
	Data    [][]float64 `json:"data"`
}

type predictRequest struct {
	DataframeSplit dataframeSplit `json:"dataframe_split"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

// buildRequest encodes the row as a single-row split-oriented data frame
func (c *Client) buildRequest(row models.FeatureVector) ([]byte, error) {
	body, err := json.Marshal(predictRequest{
		DataframeSplit: dataframeSplit{
			Columns: row.Names,
			Data:    [][]float64{row.Row()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return body, nil
}

// sendRequest posts the payload to the model server
func (c *Client) sendRequest(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	c.log.Debugf("Model server responded in %s: %s", time.Since(start), string(body))
	return body, nil
}

// parseResponse extracts the single prediction
func (c *Client) parseResponse(body []byte) (float64, error) {
	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Predictions) == 0 {
		return 0, fmt.Errorf("no predictions in response")
	}
	return out.Predictions[0], nil
}

// Predict sends the row to the model server and returns its raw score
func (c *Client) Predict(ctx context.Context, row models.FeatureVector) (float64, error) {
	payload, err := c.buildRequest(row)
	if err != nil {
		return 0, err
	}

	body, err := c.sendRequest(ctx, payload)
	if err != nil {
		return 0, err
	}

	return c.parseResponse(body)
}
