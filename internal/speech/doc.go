// Package speech queues utterances through a platform synthesizer.
//
// Playback is strictly serial and every utterance completes exactly once,
// either through the synthesizer's callback or the watchdog.
package speech
