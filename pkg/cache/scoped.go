package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. The
// server uses this to keep per-tenant caches apart while the CLI shares one
// global namespace.
//
// Example usage:
//
//	// Tenant-specific keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DatasetKey generates a prefixed key for dataset caching.
func (k *ScopedKeyer) DatasetKey(recordsHash, rulesHash string, opts DatasetKeyOpts) string {
	return k.prefix + k.inner.DatasetKey(recordsHash, rulesHash, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(datasetHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
