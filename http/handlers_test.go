package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cyberguard/inference"
)

func TestHealthHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/health", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	handler := NewHandler(DefaultServerConfig(), inference.New(newFakeModel(0), nil), nil, nil)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := `{"status":"Online","model_loaded":true,"model":"fake","features":3}`
	if rr.Body.String() != expected+"\n" && rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}
}

func TestRootReportsNotLoaded(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	svc := inference.Unavailable(errors.New("open model.json: no such file or directory"), nil)

	NewHandler(DefaultServerConfig(), svc, nil, nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	payload := decodeBody(t, rr)
	if payload["model_loaded"] != false {
		t.Fatalf("expected model_loaded=false, got %v", payload["model_loaded"])
	}
	if payload["status"] != "Online" {
		t.Fatalf("expected status Online, got %v", payload["status"])
	}
}

func TestUnknownRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/flows", nil)
	rr := httptest.NewRecorder()

	NewHandler(DefaultServerConfig(), inference.New(newFakeModel(0), nil), nil, nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
