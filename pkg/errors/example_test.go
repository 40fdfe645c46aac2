package errors_test

import (
	"errors"
	"fmt"

	isoErrors "github.com/ezoic/isoforest/pkg/errors"
)

// Example demonstrates Go 1.13+ error wrapping with the library's error types
func Example() {
	baseErr := fmt.Errorf("invalid input value")

	wrappedErr := fmt.Errorf("sampler validation failed: %w", baseErr)

	opErr := fmt.Errorf("IsolationForest.Fit: %w", wrappedErr)

	if errors.Is(opErr, baseErr) {
		fmt.Println("Found base error in chain")
	}

	unwrapped := errors.Unwrap(opErr)
	fmt.Printf("Unwrapped: %v\n", unwrapped)

	// Output: Found base error in chain
	// Unwrapped: sampler validation failed: invalid input value
}

// Example_customErrorTypes demonstrates custom error type handling
func Example_customErrorTypes() {
	dimErr := isoErrors.NewDimensionError("Divide", 5, 3, 1)

	wrappedErr := fmt.Errorf("partitioning failed: %w", dimErr)

	var dimensionErr *isoErrors.DimensionError
	if errors.As(wrappedErr, &dimensionErr) {
		fmt.Printf("Dimension error: expected %d, got %d\n",
			dimensionErr.Expected, dimensionErr.Got)
	}

	// Output: Dimension error: expected 5, got 3
}

// Example_errorComparison demonstrates error comparison patterns
func Example_errorComparison() {
	notFittedErr := isoErrors.NewNotFittedError("IsolationForest", "DepthLimit")
	valueErr := isoErrors.NewValueError("ColumnSampler.Restrict", "m must be positive")

	var notFitted *isoErrors.NotFittedError
	if errors.As(notFittedErr, &notFitted) {
		fmt.Printf("Model %s is not fitted for %s\n",
			notFitted.ModelName, notFitted.Method)
	}

	var valErr *isoErrors.ValueError
	if errors.As(valueErr, &valErr) {
		fmt.Printf("Value error in %s: %s\n", valErr.Op, valErr.Message)
	}

	// Output: Model IsolationForest is not fitted for DepthLimit
	// Value error in ColumnSampler.Restrict: m must be positive
}

// Example_sentinelErrors demonstrates sentinel comparison through wrappers
func Example_sentinelErrors() {
	err := isoErrors.NewModelError("Sampler.Build", "weights sum to zero",
		isoErrors.ErrInvalidWeights)

	opErr := fmt.Errorf("building tree 12: %w", err)

	if errors.Is(opErr, isoErrors.ErrInvalidWeights) {
		fmt.Println("Degenerate weights detected")
	}

	// Output: Degenerate weights detected
}
