package ml

// Classifier scores one schema-aligned row and returns the raw class id
// together with the model's own confidence for it.
type Classifier interface {
	Predict(features []float64) (int, float64, error)
	Schema() Schema
	Name() string
}
