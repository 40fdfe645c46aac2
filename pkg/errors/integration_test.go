package errors_test

import (
	"errors"
	"fmt"
	"testing"

	isoErrors "github.com/ezoic/isoforest/pkg/errors"
)

// TestErrorWrappingCompatibility tests Go 1.13+ error wrapping with the custom types
func TestErrorWrappingCompatibility(t *testing.T) {
	originalErr := isoErrors.NewNotFittedError("IsolationForest", "DepthLimit")

	wrappedErr := fmt.Errorf("scoring pass failed: %w", originalErr)

	if !errors.Is(wrappedErr, originalErr) {
		t.Errorf("errors.Is failed to identify wrapped error")
	}

	var notFittedErr *isoErrors.NotFittedError
	if !errors.As(wrappedErr, &notFittedErr) {
		t.Errorf("errors.As failed to extract NotFittedError")
	}

	if notFittedErr.ModelName != "IsolationForest" {
		t.Errorf("expected ModelName 'IsolationForest', got '%s'", notFittedErr.ModelName)
	}
}

// TestCombinedErrorTypes tests mixing custom and standard errors
func TestCombinedErrorTypes(t *testing.T) {
	stdErr := fmt.Errorf("standard error")

	customErr := isoErrors.NewModelError("Tree.Build", "split evaluation failed", stdErr)

	wrappedErr := fmt.Errorf("operation context: %w", customErr)

	if !errors.Is(wrappedErr, stdErr) {
		t.Errorf("failed to find standard error in chain")
	}

	var modelErr *isoErrors.ModelError
	if !errors.As(wrappedErr, &modelErr) {
		t.Errorf("failed to extract ModelError")
	}

	if modelErr.Unwrap() != stdErr {
		t.Errorf("ModelError.Unwrap() didn't return expected error")
	}
}

// TestSentinelErrors tests sentinel error patterns
func TestSentinelErrors(t *testing.T) {
	err := isoErrors.NewModelError("Sampler.Build", "invalid weights", isoErrors.ErrInvalidWeights)

	if !errors.Is(err, isoErrors.ErrInvalidWeights) {
		t.Errorf("failed to identify ErrInvalidWeights sentinel")
	}

	wrappedErr := fmt.Errorf("tree fitting failed: %w", err)

	if !errors.Is(wrappedErr, isoErrors.ErrInvalidWeights) {
		t.Errorf("failed to identify ErrInvalidWeights through wrapper")
	}
}

// TestValidationError tests the contract-violation error type
func TestValidationError(t *testing.T) {
	err := isoErrors.NewValidationError(
		"categ", "category code 7 out of range for 5 categories", 7)

	var valErr *isoErrors.ValidationError
	if !errors.As(fmt.Errorf("partition failed: %w", err), &valErr) {
		t.Fatalf("errors.As failed to extract ValidationError")
	}
	if valErr.Value != 7 {
		t.Errorf("expected recorded value 7, got %v", valErr.Value)
	}
}

// TestRecover tests panic conversion at API boundaries
func TestRecover(t *testing.T) {
	panicky := func() (err error) {
		defer isoErrors.Recover(&err, "Model.Fit")
		panic("index out of range")
	}

	err := panicky()
	if err == nil {
		t.Fatalf("expected error from recovered panic")
	}

	var modelErr *isoErrors.ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("recovered panic should produce ModelError, got %T", err)
	}
	if modelErr.Op != "Model.Fit" {
		t.Errorf("expected op 'Model.Fit', got %q", modelErr.Op)
	}
}
