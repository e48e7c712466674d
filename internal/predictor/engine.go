package predictor

import (
	"sync"
	"sync/atomic"
)

// Engine loads the artifact at path on first use and keeps it for the life of
// the process. A failed load is retried on the next call, so a missing file
// fails each prediction instead of poisoning the engine.
type Engine struct {
	path string

	mu  sync.Mutex
	clf atomic.Pointer[Classifier]
}

// NewEngine creates an Engine for the artifact at path. Nothing is read
// until Load or Classify is called.
func NewEngine(path string) *Engine {
	return &Engine{path: path}
}

// Path returns the artifact location.
func (e *Engine) Path() string {
	return e.path
}

// Load reads the artifact if it is not loaded yet.
func (e *Engine) Load() error {
	_, err := e.classifier()
	return err
}

// Classify evaluates f with the loaded artifact. It returns an error wrapping
// ErrModelUnavailable when the artifact cannot be loaded.
func (e *Engine) Classify(f Features) (Result, error) {
	clf, err := e.classifier()
	if err != nil {
		return Result{}, err
	}
	return clf.Classify(f), nil
}

func (e *Engine) classifier() (*Classifier, error) {
	if clf := e.clf.Load(); clf != nil {
		return clf, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if clf := e.clf.Load(); clf != nil {
		return clf, nil
	}

	clf, err := LoadArtifact(e.path)
	if err != nil {
		return nil, err
	}

	e.clf.Store(clf)
	return clf, nil
}
