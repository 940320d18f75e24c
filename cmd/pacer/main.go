// Pacer is an outbound rate-limiting and retry orchestration layer for
// calling rate-limited HTTP APIs.
//
// It paces concurrent callers through per-endpoint windowed limiters,
// discovers the provider's real limits from response headers, and retries
// rate-limited and transient failures with provider-directed or exponential
// backoff.
//
// Usage:
//
//	# Perform a single paced request
//	pacer call profiles /api/profiles
//
//	# Show configured and discovered limits
//	pacer limits
//
//	# Validate a configuration file
//	pacer validate --config /path/to/config.yaml
//
//	# Show version information
//	pacer version
package main

func main() {
	Execute()
}
