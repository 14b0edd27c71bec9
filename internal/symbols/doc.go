// Package symbols searches the remote symbol library by keyword.
//
// Results are lazy, finite and non-restartable; failures degrade to a
// partial result set instead of propagating to the UI.
package symbols
