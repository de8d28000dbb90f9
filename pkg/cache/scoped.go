package cache

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one Redis without colliding:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ArchitectureKey(questionnaireHash string, opts ArchitectureKeyOpts) string {
	return k.prefix + k.inner.ArchitectureKey(questionnaireHash, opts)
}

func (k *ScopedKeyer) DocumentKey(digest string, opts DocumentKeyOpts) string {
	return k.prefix + k.inner.DocumentKey(digest, opts)
}

func (k *ScopedKeyer) ArtifactKey(digest string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(digest, opts)
}
