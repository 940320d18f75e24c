package limits

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"flightpath-hq/pacer/pkg/limits/ratelimit"
	"flightpath-hq/pacer/pkg/quota"
)

// Config describes the limiter set built at startup.
type Config struct {
	// Endpoints maps endpoint names to their admission constraints.
	Endpoints map[string]ratelimit.Config

	// Default is the configuration used for endpoint names not listed in
	// Endpoints. Zero fields fall back to a conservative built-in default.
	Default ratelimit.Config

	// Global, if non-nil, configures the account-wide limiter layered over
	// all endpoints.
	Global *ratelimit.Config
}

// defaultEndpointConfig is the fallback for endpoints with no explicit
// configuration: three concurrent calls, a modest per-minute budget.
var defaultEndpointConfig = ratelimit.Config{
	Burst:     3,
	PerMinute: 60,
}

// Registry is the fixed set of named WindowedLimiters plus the optional
// global limiter. Limiters are created at construction for configured
// endpoints and lazily from the default for unknown names, so callers never
// nil-check.
type Registry struct {
	mu       sync.RWMutex
	limiters map[string]*ratelimit.WindowedLimiter
	global   *ratelimit.WindowedLimiter
	defaults ratelimit.Config
	logger   *slog.Logger
}

// NewRegistry builds the limiter set from configuration.
func NewRegistry(cfg Config) *Registry {
	defaults := cfg.Default
	if defaults.Burst <= 0 {
		defaults.Burst = defaultEndpointConfig.Burst
	}
	if defaults.PerMinute <= 0 {
		defaults.PerMinute = defaultEndpointConfig.PerMinute
	}

	r := &Registry{
		limiters: make(map[string]*ratelimit.WindowedLimiter, len(cfg.Endpoints)),
		defaults: defaults,
		logger:   slog.Default().With("component", "limits.registry"),
	}

	for name, endpointCfg := range cfg.Endpoints {
		r.limiters[name] = ratelimit.NewWindowedLimiter(withDefaults(endpointCfg, defaults))
	}

	if cfg.Global != nil {
		r.global = ratelimit.NewWindowedLimiter(*cfg.Global)
	}

	return r
}

// Get returns the limiter for an endpoint name, creating one from the
// default configuration for names that were not configured up front.
func (r *Registry) Get(name string) *ratelimit.WindowedLimiter {
	r.mu.RLock()
	limiter, ok := r.limiters[name]
	r.mu.RUnlock()
	if ok {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, ok := r.limiters[name]; ok {
		return limiter
	}
	limiter = ratelimit.NewWindowedLimiter(r.defaults)
	r.limiters[name] = limiter
	r.logger.Debug("limiter created from defaults", "endpoint", name)
	return limiter
}

// Global returns the account-wide limiter, nil if none is configured.
func (r *Registry) Global() *ratelimit.WindowedLimiter {
	return r.global
}

// Names returns the sorted endpoint names currently registered.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.limiters))
	for name := range r.limiters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyConfig live-updates limiter configurations, used by the config hot
// reload path. New endpoint names get fresh limiters; existing limiters are
// reconfigured in place so in-flight accounting and window history survive
// the reload. The global limiter is reconfigured only if it already exists.
func (r *Registry) ApplyConfig(cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, endpointCfg := range cfg.Endpoints {
		if limiter, ok := r.limiters[name]; ok {
			limiter.SetConfig(endpointCfg)
		} else {
			r.limiters[name] = ratelimit.NewWindowedLimiter(withDefaults(endpointCfg, r.defaults))
		}
	}

	if cfg.Global != nil && r.global != nil {
		r.global.SetConfig(*cfg.Global)
	}

	r.logger.Info("limiter configuration applied", "endpoints", len(cfg.Endpoints))
}

// SeedFromRecords applies persisted quota discoveries to the limiter set,
// used at startup so a restarted process begins from its last known limits
// instead of the static defaults.
func (r *Registry) SeedFromRecords(records map[string]quota.Record) {
	for name, record := range records {
		if record.Tier == quota.TierUnknown {
			continue
		}

		tierLimits := record.Tier.Limits()
		limiter := r.Get(name)
		limiter.SetConfig(ratelimit.Config{
			Burst:       tierLimits.Burst,
			PerMinute:   tierLimits.Steady,
			MinInterval: time.Duration(record.Tier.Delay()) * time.Millisecond,
		})

		r.logger.Debug("limiter seeded from persisted quota",
			"endpoint", name,
			"tier", record.Tier,
		)
	}
}

// Status returns a snapshot of every limiter plus the global one under the
// reserved key "_global", for CLI and diagnostics output.
func (r *Registry) Status() map[string]ratelimit.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ratelimit.Status, len(r.limiters)+1)
	for name, limiter := range r.limiters {
		out[name] = limiter.Status()
	}
	if r.global != nil {
		out["_global"] = r.global.Status()
	}
	return out
}

// withDefaults fills unset fields of an endpoint configuration from the
// registry default.
func withDefaults(cfg, defaults ratelimit.Config) ratelimit.Config {
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = defaults.PerMinute
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return cfg
}
