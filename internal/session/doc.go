// Package session holds the speaking session's transient and durable state.
//
// The sentence strip is in-memory only; the current board and routine
// selection is persisted so a restart resumes where the user left off.
package session
