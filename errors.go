package timeline

import (
	"github.com/pingcap/errors"
)

// errors
var (
	// field mapping
	ErrInvalidFieldPath = errors.Normalize(
		"invalid field path %q: %s",
		errors.RFCCodeText("Timeline:ErrInvalidFieldPath"),
	)
	ErrInvalidFieldSpec = errors.Normalize(
		"invalid field spec: %s",
		errors.RFCCodeText("Timeline:ErrInvalidFieldSpec"),
	)

	// normalization
	ErrShapeMismatch = errors.Normalize(
		"payload shape mismatch: %s",
		errors.RFCCodeText("Timeline:ErrShapeMismatch"),
	)
	ErrPatternMismatch = errors.Normalize(
		"pattern %s not found in %q",
		errors.RFCCodeText("Timeline:ErrPatternMismatch"),
	)
	ErrInvalidParent = errors.Normalize(
		"invalid counter parent %s %q",
		errors.RFCCodeText("Timeline:ErrInvalidParent"),
	)
	ErrUnknownKind = errors.Normalize(
		"unknown entity kind %q",
		errors.RFCCodeText("Timeline:ErrUnknownKind"),
	)
	ErrNoNormalizer = errors.Normalize(
		"no normalizer registered for kind %s",
		errors.RFCCodeText("Timeline:ErrNoNormalizer"),
	)

	// upstream timeline server
	ErrUpstreamRequest = errors.Normalize(
		"timeline request %s failed: %s",
		errors.RFCCodeText("Timeline:ErrUpstreamRequest"),
	)
	ErrUpstreamNotFound = errors.Normalize(
		"timeline entity not found: %s",
		errors.RFCCodeText("Timeline:ErrUpstreamNotFound"),
	)
	ErrUpstreamStatus = errors.Normalize(
		"timeline request %s returned status %d",
		errors.RFCCodeText("Timeline:ErrUpstreamStatus"),
	)
	ErrUnsupportedQuery = errors.Normalize(
		"kind %s cannot be listed",
		errors.RFCCodeText("Timeline:ErrUnsupportedQuery"),
	)
)
