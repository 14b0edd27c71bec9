// ABOUTME: In-memory sentence strip for the speaking session
// ABOUTME: Accumulates tapped buttons and free text into speakable output

package session

import (
	"strings"
	"sync"

	"github.com/tapspeak/tapspeak/internal/store"
)

// Entry is one element of the sentence strip: a tapped button or typed text.
type Entry struct {
	ButtonID string
	Label    string
	Speech   string
}

// Sentence accumulates taps into a speakable utterance. It is purely
// in-memory; an app restart starts from an empty strip.
type Sentence struct {
	mu      sync.Mutex
	entries []Entry
}

// NewSentence returns an empty sentence strip.
func NewSentence() *Sentence {
	return &Sentence{}
}

// Tap appends a button to the strip.
func (s *Sentence) Tap(b *store.Button) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{
		ButtonID: b.ID,
		Label:    b.Label,
		Speech:   b.SpeechText,
	})
}

// Text appends free-typed text to the strip. Blank text is ignored.
func (s *Sentence) Text(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{Label: text, Speech: text})
}

// Speech joins the strip's speech texts with single spaces.
func (s *Sentence) Speech() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		parts = append(parts, e.Speech)
	}
	return strings.Join(parts, " ")
}

// Entries returns a copy of the strip in tap order.
func (s *Sentence) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports how many entries are on the strip.
func (s *Sentence) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Backspace removes the most recent entry, if any.
func (s *Sentence) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) > 0 {
		s.entries = s.entries[:len(s.entries)-1]
	}
}

// Clear empties the strip.
func (s *Sentence) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
