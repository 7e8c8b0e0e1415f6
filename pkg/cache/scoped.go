package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Several servers sharing one Redis instance use it to keep their
// position caches apart.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "hyperscene:team-a:")
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
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PositionsKey generates a prefixed key for saved positions.
func (k *ScopedKeyer) PositionsKey(modelHash string, opts PositionKeyOpts) string {
	return k.prefix + k.inner.PositionsKey(modelHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}
