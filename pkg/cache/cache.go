// Package cache provides byte-level caching for pipeline stages.
//
// Two kinds of entries are cached: prepared notation (the output of the
// preprocess/optimize/validate stages for a given source) and render
// artifacts (sanitized SVG per engine). Keys are content hashes combined
// with the options that influenced the stage, so any change to either
// invalidates cleanly.
//
// Backends: FileCache for CLI usage, RedisCache for server deployments,
// and NullCache to disable caching entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// TTLs per entry kind. Prepared text is cheap to recompute; artifacts are
// the expensive entries worth keeping longer.
const (
	TTLPrepared = 6 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores and retrieves byte values with expiration.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PreparedKeyOpts are the options that influence stage-one output.
type PreparedKeyOpts struct {
	Family   string `json:"family"`
	Optimize bool   `json:"optimize"`
}

// ArtifactKeyOpts are the options that influence rendered artifacts.
type ArtifactKeyOpts struct {
	Engine string `json:"engine"`
}

// Keyer derives cache keys for the two entry kinds.
type Keyer interface {
	// PreparedKey derives the key for prepared notation from the source
	// text hash and preparation options.
	PreparedKey(sourceHash string, opts PreparedKeyOpts) string

	// ArtifactKey derives the key for a render artifact from the
	// prepared text hash and render options.
	ArtifactKey(preparedHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key derivation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// PreparedKey implements Keyer.
func (k *DefaultKeyer) PreparedKey(sourceHash string, opts PreparedKeyOpts) string {
	return hashKey("prepared", sourceHash, opts)
}

// ArtifactKey implements Keyer.
func (k *DefaultKeyer) ArtifactKey(preparedHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", preparedHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation,
// keeping different callers' entries in separate namespaces on a shared
// backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer falls
// back to the default.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PreparedKey generates a prefixed prepared-notation key.
func (k *ScopedKeyer) PreparedKey(sourceHash string, opts PreparedKeyOpts) string {
	return k.prefix + k.inner.PreparedKey(sourceHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(preparedHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(preparedHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
