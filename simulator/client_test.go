package simulator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cyberguard/ml"
)

func TestClientPredict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Features map[string]interface{} `json:"features"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		if body.Features["packets"] != "12" {
			t.Errorf("unexpected features: %v", body.Features)
		}
		w.Write([]byte(`{"prediction":"DDoS","status":"DDoS","confidence":"High"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	resp := client.Predict(context.Background(), ml.FeatureMap{"packets": ml.TextValue("12")})

	if resp.Prediction != "DDoS" || resp.Confidence != "High" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestClientPredictNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"prediction":"Error","detail":"model not loaded"}`))
	}))
	defer server.Close()

	resp := NewClient(server.URL+"/predict", time.Second).Predict(context.Background(), ml.FeatureMap{"a": ml.NumberValue(1)})
	if resp.Prediction != "Error" || resp.Details != "Status 503" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestClientPredictTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	resp := NewClient(url, time.Second).Predict(context.Background(), ml.FeatureMap{"a": ml.NumberValue(1)})
	if resp.Prediction != "Error" || resp.Details == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
