package cache

// ScopedKeyer prefixes every key of another keyer, giving each tenant of a
// shared backend its own namespace:
//
//	keyer := cache.NewScopedKeyer(nil, "serve:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey implements [Keyer].
func (k *ScopedKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, opts)
}

// ArtifactKey implements [Keyer].
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
