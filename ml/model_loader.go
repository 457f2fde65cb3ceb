package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	DecisionTreeModel = "decision_tree"
	RandomForestModel = "random_forest"
)

// Artifact is the on-disk form of a trained classifier. Files with a .zst
// suffix are zstd compressed.
type Artifact struct {
	ModelType    string       `json:"model_type"`
	Version      string       `json:"version,omitempty"`
	FeatureNames []string     `json:"feature_names"`
	Nodes        []TreeNode   `json:"nodes,omitempty"`
	Trees        [][]TreeNode `json:"trees,omitempty"`
}

// LoadModel reads the artifact at path and builds the classifier it
// describes. modelType may be empty, in which case the artifact decides.
func LoadModel(modelType, path string) (Classifier, error) {
	artifact, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	return BuildModel(modelType, artifact)
}

func BuildModel(modelType string, artifact *Artifact) (Classifier, error) {
	if artifact == nil {
		return nil, errors.New("artifact is nil")
	}
	if modelType == "" {
		modelType = artifact.ModelType
	}
	if artifact.ModelType != "" && artifact.ModelType != modelType {
		return nil, fmt.Errorf("artifact holds a %s, configured for %s", artifact.ModelType, modelType)
	}
	schema, err := NewSchema(artifact.FeatureNames)
	if err != nil {
		return nil, fmt.Errorf("invalid feature names: %w", err)
	}

	var model Classifier
	switch modelType {
	case DecisionTreeModel:
		model, err = NewDecisionTree(artifact.Nodes, schema)
	case RandomForestModel:
		model, err = NewRandomForest(artifact.Trees, schema)
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
	if err != nil {
		return nil, err
	}
	if artifact.Version != "" {
		model = versioned{Classifier: model, version: artifact.Version}
	}
	return model, nil
}

func ReadArtifact(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".zst") {
		payload, err = decompress(payload)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, err)
		}
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &artifact, nil
}

func decompress(payload []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(payload, make([]byte, 0, len(payload)*3))
}

type versioned struct {
	Classifier
	version string
}

func (v versioned) Name() string {
	return v.Classifier.Name() + " " + v.version
}
