// Package authstate defines the stable authentication types shared across
// the application and the pure mapping layer that produces them from raw
// transport payloads.
//
// The package is the single chokepoint for trusting external shape: raw
// users, sessions and errors from pkg/transport enter through MapUser,
// MapSession and MapError and nothing above this layer ever inspects a raw
// payload. All mapping is side-effect free and nil-tolerant — a nil raw
// value maps to nil, malformed timestamps map to the zero time, and unknown
// service error codes collapse to CodeUnknown.
//
// State is the canonical {status, user, session, error} tuple owned by the
// session manager. Its core invariant: User and Session are both non-nil
// exactly when Status is StatusAuthenticated.
package authstate
