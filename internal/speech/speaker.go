// ABOUTME: Queued text-to-speech front end over a pluggable synthesizer
// ABOUTME: One utterance in flight, watchdog-bounded completion, clamped params

package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Params controls voice rendering for a single utterance.
type Params struct {
	Voice  string
	Rate   float64 // 0.5..2.0, 1.0 is normal
	Pitch  float64 // 0.5..2.0
	Volume float64 // 0.0..1.0
}

// Bounds for parameter clamping.
const (
	MinRate   = 0.5
	MaxRate   = 2.0
	MinPitch  = 0.5
	MaxPitch  = 2.0
	MinVolume = 0.0
	MaxVolume = 1.0
)

// DefaultParams is used when a zero Params is passed.
var DefaultParams = Params{Rate: 1.0, Pitch: 1.0, Volume: 1.0}

// Synthesizer renders one utterance. Done must be called exactly once when
// playback finishes; the speaker's watchdog covers synthesizers that never
// call it.
type Synthesizer interface {
	Speak(ctx context.Context, text string, params Params, done func())
	Stop()
}

// ErrClosed is returned when speaking through a closed speaker.
var ErrClosed = errors.New("speaker is closed")

// Config sizes the completion watchdog. The watchdog for an utterance is
// Base plus PerChar for each character of text.
type Config struct {
	Base    time.Duration
	PerChar time.Duration
}

// DefaultConfig gives a generous budget so the watchdog only fires when a
// synthesizer genuinely hangs.
var DefaultConfig = Config{
	Base:    2 * time.Second,
	PerChar: 150 * time.Millisecond,
}

type utterance struct {
	text   string
	params Params

	// flush marks a drain sentinel rather than speakable text; the run loop
	// closes it once every earlier queue entry has finished playing.
	flush chan struct{}
}

// Speaker serializes utterances through a synthesizer. Speak enqueues and
// returns immediately; utterances play one at a time in FIFO order.
type Speaker struct {
	synth  Synthesizer
	config Config
	logger *slog.Logger

	queue  chan utterance
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewSpeaker starts a speaker over the synthesizer. Close releases it.
func NewSpeaker(synth Synthesizer, config Config) *Speaker {
	if config.Base <= 0 {
		config.Base = DefaultConfig.Base
	}
	if config.PerChar <= 0 {
		config.PerChar = DefaultConfig.PerChar
	}
	s := &Speaker{
		synth:  synth,
		config: config,
		logger: slog.Default().With("component", "speech"),
		queue:  make(chan utterance, 64),
		closed: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Speak enqueues text for playback. Empty text is ignored. Parameters are
// clamped to their bounds; a zero Params gets defaults.
func (s *Speaker) Speak(text string, params Params) error {
	if text == "" {
		return nil
	}
	if params == (Params{}) {
		params = DefaultParams
	}
	params = clamp(params)

	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	select {
	case s.queue <- utterance{text: text, params: params}:
		return nil
	case <-s.closed:
		return ErrClosed
	}
}

// Flush blocks until every utterance queued before the call has finished
// playing. It returns immediately on a closed speaker.
func (s *Speaker) Flush() {
	flushed := make(chan struct{})
	select {
	case s.queue <- utterance{flush: flushed}:
	case <-s.closed:
		return
	}
	select {
	case <-flushed:
	case <-s.closed:
	}
}

// Stop interrupts the current utterance and discards the queue. A pending
// Flush counts its discarded utterances as finished.
func (s *Speaker) Stop() {
	s.synth.Stop()
	for {
		select {
		case u := <-s.queue:
			if u.flush != nil {
				close(u.flush)
			}
		default:
			return
		}
	}
}

// Close stops playback and shuts the speaker down. Close is idempotent.
func (s *Speaker) Close() {
	s.once.Do(func() {
		close(s.closed)
		s.synth.Stop()
	})
	s.wg.Wait()
}

func (s *Speaker) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.closed:
			return
		case u := <-s.queue:
			if u.flush != nil {
				close(u.flush)
				continue
			}
			s.play(u)
		}
	}
}

// play renders one utterance and blocks until the synthesizer reports
// completion or the watchdog gives up on it. The done callback and the
// watchdog race; exactly one of them resolves the utterance.
func (s *Speaker) play(u utterance) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finished := make(chan struct{})
	var once sync.Once
	done := func() {
		once.Do(func() { close(finished) })
	}

	budget := s.config.Base + time.Duration(len(u.text))*s.config.PerChar
	watchdog := time.NewTimer(budget)
	defer watchdog.Stop()

	s.synth.Speak(ctx, u.text, u.params, done)

	select {
	case <-finished:
	case <-watchdog.C:
		s.logger.Warn("synthesizer did not report completion, moving on",
			"chars", len(u.text), "budget", budget)
		s.synth.Stop()
	case <-s.closed:
	}
}

func clamp(p Params) Params {
	p.Rate = clampFloat(p.Rate, MinRate, MaxRate)
	p.Pitch = clampFloat(p.Pitch, MinPitch, MaxPitch)
	p.Volume = clampFloat(p.Volume, MinVolume, MaxVolume)
	return p
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
