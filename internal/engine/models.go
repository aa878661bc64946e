package engine

import (
	"github.com/abhisek/quizladder/internal/fault"
	"github.com/abhisek/quizladder/internal/logging"
	"github.com/abhisek/quizladder/internal/model"
)

// Models is the set of advisory models available to a Controller. A nil
// model is unavailable and the matching Err field says why.
//
// Models is built once at startup and never mutated afterwards.
type Models struct {
	Classifier    model.Classifier
	ClassifierErr error

	Policy    model.Policy
	PolicyErr error
}

// LoadModels loads both artifacts. A missing or corrupt artifact is logged
// once here and leaves that model unavailable; it is never fatal.
func LoadModels(classifierPath, policyPath string, log *logging.Logger) *Models {
	m := &Models{}

	if c, err := model.LoadClassifier(classifierPath); err != nil {
		m.ClassifierErr = err
		log.Warn("classifier unavailable, decisions fall back to the heuristic",
			"path", classifierPath, "error", err)
	} else {
		m.Classifier = c
		log.Info("classifier loaded", "path", classifierPath)
	}

	if p, err := model.LoadPolicy(policyPath); err != nil {
		m.PolicyErr = err
		log.Warn("policy unavailable, decisions fall back to the heuristic",
			"path", policyPath, "error", err)
	} else {
		m.Policy = p
		log.Info("policy loaded", "path", policyPath)
	}

	return m
}

// NoModels returns a Models with neither model loaded.
func NoModels() *Models {
	return &Models{
		ClassifierErr: &fault.ModelError{Kind: model.KindClassifier, Err: errNotConfigured},
		PolicyErr:     &fault.ModelError{Kind: model.KindPolicy, Err: errNotConfigured},
	}
}

func (m *Models) classifierErr() error {
	if m.ClassifierErr != nil {
		return m.ClassifierErr
	}
	return &fault.ModelError{Kind: model.KindClassifier, Err: errNotConfigured}
}

func (m *Models) policyErr() error {
	if m.PolicyErr != nil {
		return m.PolicyErr
	}
	return &fault.ModelError{Kind: model.KindPolicy, Err: errNotConfigured}
}
