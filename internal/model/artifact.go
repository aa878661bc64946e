package model

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/fault"
	"github.com/abhisek/quizladder/internal/features"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// Artifact kinds.
const (
	KindClassifier = "classifier"
	KindPolicy     = "policy"
)

// FormatVersion is written into every saved artifact. Artifacts load when
// their major version matches.
const FormatVersion = "v1.0.0"

//go:embed artifact.schema.json
var artifactSchemaJSON []byte

var compileArtifactSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(artifactSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse artifact schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://artifact.json", doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile("schema://artifact.json")
})

// Artifact is the on-disk form of a trained linear model: one weight row and
// one bias per output (levels for a classifier, actions for a policy).
type Artifact struct {
	Kind          string            `json:"kind"`
	FormatVersion string            `json:"format_version"`
	FeatureWidth  int               `json:"feature_width"`
	Weights       [][]float64       `json:"weights"`
	Bias          []float64         `json:"bias"`
	TrainedAt     time.Time         `json:"trained_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewArtifact returns an artifact of the given kind with zeroed parameters.
func NewArtifact(kind string) *Artifact {
	outputs := difficulty.NumLevels
	if kind == KindPolicy {
		outputs = difficulty.NumActions
	}
	a := &Artifact{
		Kind:          kind,
		FormatVersion: FormatVersion,
		FeatureWidth:  features.Width,
		Weights:       make([][]float64, outputs),
		Bias:          make([]float64, outputs),
		Metadata:      map[string]string{},
	}
	for i := range a.Weights {
		a.Weights[i] = make([]float64, features.Width)
	}
	return a
}

// Validate checks that the artifact fits the current feature layout.
func (a *Artifact) Validate() error {
	if a.Kind != KindClassifier && a.Kind != KindPolicy {
		return fmt.Errorf("unknown kind %q", a.Kind)
	}
	if !semver.IsValid(a.FormatVersion) {
		return fmt.Errorf("format_version %q is not a semantic version", a.FormatVersion)
	}
	if semver.Major(a.FormatVersion) != semver.Major(FormatVersion) {
		return fmt.Errorf("format_version %s is incompatible with %s", a.FormatVersion, FormatVersion)
	}
	if a.FeatureWidth != features.Width {
		return fmt.Errorf("feature_width %d, want %d", a.FeatureWidth, features.Width)
	}

	outputs := difficulty.NumLevels
	if a.Kind == KindPolicy {
		outputs = difficulty.NumActions
	}
	if len(a.Weights) != outputs || len(a.Bias) != outputs {
		return fmt.Errorf("%s needs %d outputs, got %d weight rows and %d biases",
			a.Kind, outputs, len(a.Weights), len(a.Bias))
	}
	for i, row := range a.Weights {
		if len(row) != a.FeatureWidth {
			return fmt.Errorf("weight row %d has %d values, want %d", i, len(row), a.FeatureWidth)
		}
	}
	return nil
}

// LoadArtifact reads, schema-checks and validates an artifact of the given
// kind. Every failure is a *fault.ModelError.
func LoadArtifact(path, kind string) (*Artifact, error) {
	wrap := func(err error) error {
		return &fault.ModelError{Kind: kind, Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, wrap(fmt.Errorf("invalid JSON: %w", err))
	}
	schema, err := compileArtifactSchema()
	if err != nil {
		return nil, wrap(err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, wrap(fmt.Errorf("schema validation failed: %w", err))
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, wrap(fmt.Errorf("decode artifact: %w", err))
	}
	if a.Kind != kind {
		return nil, wrap(fmt.Errorf("artifact is a %s, want %s", a.Kind, kind))
	}
	if err := a.Validate(); err != nil {
		return nil, wrap(err)
	}
	return &a, nil
}

// Save writes the artifact atomically, creating parent directories.
func (a *Artifact) Save(path string) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validate artifact: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Join(fmt.Errorf("rename artifact: %w", err), os.Remove(tmp))
	}
	return nil
}
