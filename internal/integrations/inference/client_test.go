package inference_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/loan-risk-service/internal/config"
	"github.com/Dan9191/loan-risk-service/internal/integrations/inference"
	"github.com/Dan9191/loan-risk-service/internal/models"
)

func newClient(url string) *inference.Client {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return inference.NewClient(&config.Config{ModelURL: url, ModelTimeout: time.Second}, logger)
}

var row = models.FeatureVector{
	Names:  []string{"age", "loan_amount"},
	Values: map[string]float64{"age": 35, "loan_amount": 250000},
}

func TestClient_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"dataframe_split":{"columns":["age","loan_amount"],"data":[[35,250000]]}}`, string(body))

		_ = json.NewEncoder(w).Encode(map[string]any{"predictions": []float64{72.4}})
	}))
	defer srv.Close()

	score, err := newClient(srv.URL).Predict(context.Background(), row)
	require.NoError(t, err)
	assert.Equal(t, 72.4, score)
}

func TestClient_Predict_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"server error", http.StatusInternalServerError, `{}`, "unexpected status code: 500"},
		{"bad json", http.StatusOK, `not json`, "failed to decode response"},
		{"no predictions", http.StatusOK, `{"predictions":[]}`, "no predictions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Predict(context.Background(), row)
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func TestClient_Predict_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(url).Predict(context.Background(), row)
	assert.ErrorContains(t, err, "request failed")
}

func TestClient_Predict_Canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := newClient(srv.URL).Predict(ctx, row)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}
