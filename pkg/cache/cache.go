// Package cache provides pluggable byte caching for pipeline stages.
//
// Three backends are available: FileCache for CLI usage (XDG cache dir),
// RedisCache for the server, and NullCache to disable caching. Keys are
// generated by a Keyer so that every option that affects a stage's output is
// part of its cache key.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
// Implementations must treat a missing key as (nil, false, nil), not an error.
type Cache interface {
	// Get retrieves a value. The boolean reports whether the key was found
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A non-positive ttl stores the
	// value without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Cache TTLs per pipeline stage. Datasets change when their source records
// change, so they expire fastest; artifacts are pure functions of a layout
// and can live longest.
const (
	TTLDataset  = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// DatasetKeyOpts are the aggregation options that affect a dataset's content.
type DatasetKeyOpts struct {
	TextColumn string `json:"text_column,omitempty"`
}

// LayoutKeyOpts are the layout options that affect a layout's content.
type LayoutKeyOpts struct {
	VizType   string   `json:"viz_type"`
	RingWidth float64  `json:"ring_width,omitempty"`
	MaxRadius float64  `json:"max_radius,omitempty"`
	Focus     []string `json:"focus,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
}

// ArtifactKeyOpts are the render options that affect an artifact's content.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Style  string `json:"style,omitempty"`
	Legend bool   `json:"legend,omitempty"`
	Labels bool   `json:"labels,omitempty"`
	Titles bool   `json:"titles,omitempty"`
}

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// DatasetKey keys an aggregated dataset by the hashes of its records and
	// rules plus the aggregation options.
	DatasetKey(recordsHash, rulesHash string, opts DatasetKeyOpts) string

	// LayoutKey keys a computed layout by the dataset hash and layout options.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the layout hash and render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme: a stage prefix plus a SHA-256
// hash over the inputs and options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// DatasetKey implements [Keyer].
func (k *DefaultKeyer) DatasetKey(recordsHash, rulesHash string, opts DatasetKeyOpts) string {
	return hashKey("dataset", recordsHash, rulesHash, opts)
}

// LayoutKey implements [Keyer].
func (k *DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}

// ArtifactKey implements [Keyer].
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
