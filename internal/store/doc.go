// Package store is the sole reader and writer of tapspeak's persisted state.
//
// It exposes typed CRUD over profiles, boards, buttons, routines, media
// assets, utterances, usage logs and the subscription snapshot, backed by a
// local SQLite database. Schema changes are versioned migrations applied in
// ascending order exactly once each. List queries have contractual ordering
// because the UI relies on stable list rendering. JSON blob columns are
// (de)serialized into typed structs at this boundary and never leak past it.
package store
