// Package inference turns a raw feature map into a BENIGN/DDoS verdict
// using a classifier loaded once at start-up.
package inference

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cyberguard/logger"
	"cyberguard/ml"
)

// ConfidenceHigh is reported for every successful verdict; the service does
// not estimate uncertainty.
const ConfidenceHigh = "High"

var (
	ErrUnavailable    = errors.New("model not loaded")
	ErrInvalidRequest = errors.New("no feature data found in request")
)

// InternalError wraps any failure raised while coercing, aligning or scoring.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string {
	if e.Cause == nil {
		return "internal error"
	}
	return e.Cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

type Result struct {
	Label      ml.Label
	Confidence string
}

type Health struct {
	Loaded   bool
	Model    string
	Features int
	Cause    string
}

// Service is immutable once built and safe for concurrent use.
type Service struct {
	model   ml.Classifier
	schema  ml.Schema
	loadErr error
	log     *zap.Logger
}

func New(model ml.Classifier, log *zap.Logger) *Service {
	if model == nil {
		return Unavailable(errors.New("no classifier supplied"), log)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{model: model, schema: model.Schema(), log: log}
}

// Unavailable builds a service that answers every prediction with
// ErrUnavailable.
func Unavailable(cause error, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{loadErr: cause, log: log}
}

// Open loads the artifact at path. A missing or corrupt artifact degrades
// the service instead of failing start-up.
func Open(modelType, path string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("loading model", zap.String("path", path), zap.String("model_type", modelType))
	model, err := ml.LoadModel(modelType, path)
	if err != nil {
		log.Error("failed to load model", zap.String("path", path), zap.Error(err))
		return Unavailable(err, log)
	}
	log.Info("model loaded",
		zap.String("model", model.Name()),
		zap.Int("features", model.Schema().Len()))
	return New(model, log)
}

func (s *Service) Health() Health {
	if s == nil || s.model == nil {
		health := Health{}
		if s != nil && s.loadErr != nil {
			health.Cause = s.loadErr.Error()
		}
		return health
	}
	return Health{Loaded: true, Model: s.model.Name(), Features: s.schema.Len()}
}

func (s *Service) Loaded() bool {
	return s != nil && s.model != nil
}

// Predict scores one feature map. The returned error is ErrUnavailable,
// ErrInvalidRequest or an *InternalError.
func (s *Service) Predict(ctx context.Context, features ml.FeatureMap) (result Result, err error) {
	if !s.Loaded() {
		return Result{}, ErrUnavailable
	}
	if len(features) == 0 {
		return Result{}, ErrInvalidRequest
	}

	log := logger.For(ctx, s.log)
	defer func() {
		if r := recover(); r != nil {
			err = &InternalError{Cause: fmt.Errorf("classifier panic: %v", r)}
			result = Result{}
			log.Error("prediction failed", zap.Error(err))
		}
	}()

	vector := ml.AlignToSchema(ml.CoerceToNumeric(features), s.schema)
	classID, _, perr := s.model.Predict(vector)
	if perr != nil {
		log.Error("prediction failed", zap.Error(perr))
		return Result{}, &InternalError{Cause: perr}
	}

	label := ml.LabelFromClassID(classID)
	log.Debug("prediction",
		zap.Int("class_id", classID),
		zap.String("label", string(label)),
		zap.Int("input_features", len(features)))
	return Result{Label: label, Confidence: ConfidenceHigh}, nil
}
