package types

import "errors"

// Error kinds. Callers wrap these with the offending value and match with errors.Is.
var (
	ErrInvalidVersion       = errors.New("invalid version")
	ErrUpstreamFetch        = errors.New("upstream fetch failed")
	ErrManifestParse        = errors.New("malformed manifest")
	ErrMalformedArgs        = errors.New("malformed extra-args")
	ErrInvalidAnnotateValue = errors.New("invalid annotate value")
	ErrMalformedReport      = errors.New("malformed checker report")
)
