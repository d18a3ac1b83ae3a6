package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles. Flags gate behavior that operators
// may want to switch without a redeploy, such as automatic completion when
// progress reaches 100%.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// Predefined feature flag names.
const (
	// FeatureAutoComplete completes an enrollment automatically when its
	// progress reaches 100%, issuing the certificate in the same operation.
	FeatureAutoComplete = "enrollment.auto_complete"

	// FeatureAsyncEvents dispatches domain events on a worker pool instead
	// of synchronously. The audit trail loses strict ordering when enabled.
	FeatureAsyncEvents = "events.async_dispatch"

	// FeatureStatsCache enables the Redis-backed statistics cache.
	FeatureStatsCache = "reports.stats_cache"

	// FeatureCertificateCache enables the Redis-backed verification lookup cache.
	FeatureCertificateCache = "certificates.lookup_cache"
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features: make(map[string]*Feature),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureAutoComplete] = &Feature{
		Name:        FeatureAutoComplete,
		Description: "Complete enrollments automatically at 100% progress",
		Enabled:     false,
	}

	ff.features[FeatureAsyncEvents] = &Feature{
		Name:        FeatureAsyncEvents,
		Description: "Dispatch domain events asynchronously",
		Enabled:     false,
	}

	ff.features[FeatureStatsCache] = &Feature{
		Name:        FeatureStatsCache,
		Description: "Cache course statistics in Redis",
		Enabled:     true,
	}

	ff.features[FeatureCertificateCache] = &Feature{
		Name:        FeatureCertificateCache,
		Description: "Cache certificate lookups in Redis",
		Enabled:     true,
	}
}

// loadFromEnvironment applies FEATURE_* overrides. The flag name maps to
// an env var by uppercasing and replacing separators, e.g.
// enrollment.auto_complete -> FEATURE_ENROLLMENT_AUTO_COMPLETE.
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := "FEATURE_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(name))
		val := os.Getenv(envKey)
		if val == "" {
			continue
		}
		if enabled, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = enabled
		}
	}
}

// IsEnabled reports whether a feature is enabled. Unknown flags are off.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[name]
	return ok && feature.Enabled
}

// SetEnabled toggles a feature at runtime. Unknown flags are registered.
func (ff *FeatureFlags) SetEnabled(name string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if feature, ok := ff.features[name]; ok {
		feature.Enabled = enabled
		return
	}
	ff.features[name] = &Feature{Name: name, Enabled: enabled}
}

// List returns all registered features.
func (ff *FeatureFlags) List() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	features := make([]Feature, 0, len(ff.features))
	for _, f := range ff.features {
		features = append(features, *f)
	}
	return features
}
