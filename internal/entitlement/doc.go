// Package entitlement derives subscription status from cached facts and time.
//
// The engine is a pure state machine with no network access of its own:
// uninitialized -> trial_active -> active_subscribed | grace_period ->
// expired_limited_mode, re-evaluated fresh on every query. The cache keeps a
// durable mirror of the last known facts so cold starts and offline sessions
// gate features correctly without waiting for purchase validation.
package entitlement
