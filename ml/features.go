package ml

import (
	"errors"
	"fmt"
	"strings"
)

// Schema is the ordered list of feature names a classifier was trained on.
type Schema struct {
	names []string
	index map[string]int
}

func NewSchema(names []string) (Schema, error) {
	if len(names) == 0 {
		return Schema{}, errors.New("feature names is empty")
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return Schema{}, fmt.Errorf("feature %d has an empty name", i)
		}
		if _, ok := index[name]; ok {
			return Schema{}, fmt.Errorf("duplicate feature name %q", name)
		}
		index[name] = i
	}
	cleaned := make([]string, len(names))
	for name, i := range index {
		cleaned[i] = name
	}
	return Schema{names: cleaned, index: index}, nil
}

func MustSchema(names ...string) Schema {
	schema, err := NewSchema(names)
	if err != nil {
		panic(err)
	}
	return schema
}

func (s Schema) Len() int {
	return len(s.names)
}

func (s Schema) Names() []string {
	return append([]string(nil), s.names...)
}

func (s Schema) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

func CoerceToNumeric(features FeatureMap) map[string]float64 {
	numeric := make(map[string]float64, len(features))
	for name, value := range features {
		numeric[name] = value.Float()
	}
	return numeric
}

// AlignToSchema lays the values out in schema order. Names the schema does
// not know are dropped, names the input lacks are 0.
func AlignToSchema(values map[string]float64, schema Schema) []float64 {
	vector := make([]float64, len(schema.names))
	for i, name := range schema.names {
		vector[i] = finiteOrZero(values[name])
	}
	return vector
}
