// Package editor implements caregiver-mode board editing.
package editor
