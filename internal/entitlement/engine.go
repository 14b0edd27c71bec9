// ABOUTME: Pure entitlement state machine deriving status from stored facts plus time
// ABOUTME: No network access and no mutation; every status query evaluates fresh

package entitlement

import "time"

// Defaults for the subscription policy windows.
const (
	DefaultTrialDays       = 14
	DefaultGracePeriodDays = 3
)

// Engine computes subscription status from cached entitlement facts and the
// current time. It holds only policy constants; evaluation is a pure function
// and never mutates the fact set.
type Engine struct {
	TrialDays       int
	GracePeriodDays int
}

// NewEngine returns an engine with the default policy windows.
func NewEngine() Engine {
	return Engine{
		TrialDays:       DefaultTrialDays,
		GracePeriodDays: DefaultGracePeriodDays,
	}
}

// Evaluate derives the status for the given facts at the given instant.
//
// Trial takes precedence while its window is open, even when an expired paid
// period also exists: trial windows are not retroactively cut short by an
// unrelated expiry. Grace comes from the explicit marker when present,
// otherwise from expiry plus the grace window.
func (e Engine) Evaluate(f *Facts, now time.Time) Status {
	if f == nil {
		return StatusUninitialized
	}

	if f.TrialStartedAt != nil {
		trialEnds := time.UnixMilli(*f.TrialStartedAt).Add(time.Duration(e.TrialDays) * 24 * time.Hour)
		if now.Before(trialEnds) {
			return StatusTrialActive
		}
	}

	if f.ExpiresAt != nil {
		expires := time.UnixMilli(*f.ExpiresAt)
		if now.Before(expires) {
			return StatusActiveSubscribed
		}
		if f.GracePeriodEndsAt != nil {
			if now.Before(time.UnixMilli(*f.GracePeriodEndsAt)) {
				return StatusGracePeriod
			}
		} else if now.Before(expires.Add(time.Duration(e.GracePeriodDays) * 24 * time.Hour)) {
			return StatusGracePeriod
		}
	}

	return StatusExpiredLimitedMode
}

// StartTrial returns a fresh fact set for a trial beginning now. Used by the
// onboarding flow through SetEntitlement; the engine itself stores nothing.
func (e Engine) StartTrial(now time.Time) *Facts {
	started := Millis(now)
	return &Facts{
		Status:          StatusTrialActive,
		TrialStartedAt:  &started,
		LastValidatedAt: started,
	}
}
