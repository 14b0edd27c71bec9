// Package purchase talks to the remote purchase validation service.
//
// It is the only network path into the entitlement layer: a successful
// validation produces a fresh fact set for entitlement.Cache.SetEntitlement,
// an unreachable service degrades to ErrRemoteUnavailable so callers keep
// their cached facts, and a reachable service reporting no entitlement is
// treated as "nothing new", never as revocation.
package purchase
