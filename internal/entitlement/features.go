// ABOUTME: Feature gating advice derived from the computed entitlement status
// ABOUTME: A fixed always-available set stays open regardless of subscription state

package entitlement

import "time"

// Feature names known to the gating layer.
const (
	FeatureCoreBoard     = "core_board"
	FeatureSpeak         = "speak"
	FeatureBasicTTS      = "basic_tts"
	FeatureHighContrast  = "high_contrast"
	FeatureReducedMotion = "reduced_motion"

	FeatureCustomBoards  = "custom_boards"
	FeatureRoutines      = "routines"
	FeaturePhotoButtons  = "photo_buttons"
	FeatureSymbolSearch  = "symbol_search"
	FeatureVoiceSettings = "voice_settings"
)

// alwaysAvailable features stay open in every status, including expired
// limited mode. Communication never gets locked behind the paywall.
var alwaysAvailable = map[string]bool{
	FeatureCoreBoard:     true,
	FeatureSpeak:         true,
	FeatureBasicTTS:      true,
	FeatureHighContrast:  true,
	FeatureReducedMotion: true,
}

// IsFeatureAvailable reports whether a feature is usable given the stored
// facts at the given instant.
//
// Uninitialized defaults to allow: a fresh install must not block the user
// before onboarding has had a chance to start a trial. Expired limited mode
// denies everything outside the always-available set.
func (e Engine) IsFeatureAvailable(f *Facts, feature string, now time.Time) bool {
	if alwaysAvailable[feature] {
		return true
	}

	switch e.Evaluate(f, now) {
	case StatusUninitialized:
		return true
	case StatusTrialActive, StatusActiveSubscribed, StatusGracePeriod:
		return true
	default:
		return false
	}
}
