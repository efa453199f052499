// Package errors defines all exported error sentinels for the sbsim module.
//
// This is the single source of truth for error values. The root package and
// its internal subpackages all import from here, so errors.Is checks work
// across package boundaries regardless of where a given error originates.
package errors

import "errors"

// Configuration errors
var (
	ErrUnknownSBStruct   = errors.New("sbsim: unknown SB backing structure")
	ErrInvalidCounterCache = errors.New("sbsim: counter cache geometry must have at least one way and one set")
	ErrUnknownReplayDetectionMode = errors.New("sbsim: replay detection mode does not select a Squash Buffer policy")
)

// Counter vector errors
var (
	ErrZeroCells = errors.New("sbsim: counter vector must have at least one cell")
	ErrZeroWidth = errors.New("sbsim: counter vector cell width must be at least one bit")
	ErrSizeMismatch = errors.New("sbsim: counter vectors must have equal cell count and width to merge")
	ErrValueTooLarge = errors.New("sbsim: value exceeds the maximum representable by the cell width")
)

// Hashing errors
var (
	ErrObjectTooLarge = errors.New("sbsim: hash input exceeds the configured byte span")
	ErrZeroHashCount  = errors.New("sbsim: hasher must produce at least one digest")
)

// Bloom filter construction errors
var (
	ErrZeroProjectedElements = errors.New("sbsim: projected element count must be positive")
	ErrInvalidFalsePositiveRate = errors.New("sbsim: false positive probability must be in (0, 1)")
)

// Squash Buffer errors
var (
	ErrRetireUnsupported = errors.New("sbsim: retire is not supported by the Simple Squash Buffer")
)
