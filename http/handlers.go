package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"cyberguard/inference"
	"cyberguard/logger"
	"cyberguard/ml"
	"cyberguard/monitoring"
)

// VerdictFeed receives every successful verdict and serves the live stream.
type VerdictFeed interface {
	http.Handler
	Publish(monitoring.Verdict)
}

type PredictRequest struct {
	Features ml.FeatureMap `json:"features"`
}

type PredictResponse struct {
	Prediction ml.Label `json:"prediction"`
	Status     ml.Label `json:"status"`
	Confidence string   `json:"confidence,omitempty"`
	Detail     string   `json:"detail,omitempty"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Model       string `json:"model,omitempty"`
	Features    int    `json:"features,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

type Handlers struct {
	svc  *inference.Service
	feed VerdictFeed
	log  *zap.Logger
}

func NewHandlers(svc *inference.Service, feed VerdictFeed, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{svc: svc, feed: feed, log: log}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleHealth)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("POST /predict", h.handlePredict)
	if h.feed != nil {
		mux.Handle("GET /api/ws/predictions", h.feed)
	}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := h.svc.Health()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "Online",
		ModelLoaded: health.Loaded,
		Model:       health.Model,
		Features:    health.Features,
		Detail:      health.Cause,
	})
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Loaded() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse(inference.ErrUnavailable.Error()))
		return
	}

	var req PredictRequest
	if err := decodeRequest(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	result, err := h.svc.Predict(r.Context(), req.Features)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		Prediction: result.Label,
		Status:     result.Label,
		Confidence: result.Confidence,
	})

	if h.feed != nil {
		h.feed.Publish(monitoring.Verdict{
			RequestID:  logger.RequestID(r.Context()),
			Prediction: result.Label,
			Confidence: result.Confidence,
			Features:   req.Features,
		})
	}
}

// decodeRequest reads exactly one JSON document from the body.
func decodeRequest(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// statusFor maps service errors to HTTP codes; *inference.InternalError and
// anything unexpected are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, inference.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, inference.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(detail string) PredictResponse {
	return PredictResponse{
		Prediction: ml.LabelError,
		Status:     ml.LabelError,
		Detail:     detail,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
