// Package quota tracks provider rate-limit quotas as they are discovered at
// runtime from response headers.
//
// The provider does not publish its quotas up front: each endpoint belongs to
// an undisclosed quota tier, and the only signal is the rate-limit headers on
// responses. The Tracker is a passive observer on the response path. It parses
// those headers per endpoint, infers the quota tier when the provider does not
// name one explicitly, and offers a conservative per-endpoint micro-delay
// derived from the last known tier.
//
// The Tracker never gates requests itself; admission control belongs to the
// ratelimit package. The two are deliberately independent: the tracker's
// suggested delay is a second, cheaper line of defense while a limiter's
// configuration catches up to newly observed headers.
package quota
