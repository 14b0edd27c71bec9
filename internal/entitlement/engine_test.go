package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func msPtr(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

func TestEngine_Evaluate(t *testing.T) {
	engine := NewEngine()
	trialStart := baseTime
	expiry := baseTime.Add(days(30))

	tests := []struct {
		name  string
		facts *Facts
		now   time.Time
		want  Status
	}{
		{
			name:  "no facts at all",
			facts: nil,
			now:   baseTime,
			want:  StatusUninitialized,
		},
		{
			name:  "inside trial window",
			facts: &Facts{TrialStartedAt: msPtr(trialStart)},
			now:   trialStart.Add(days(13)),
			want:  StatusTrialActive,
		},
		{
			name:  "trial over, nothing purchased",
			facts: &Facts{TrialStartedAt: msPtr(trialStart)},
			now:   trialStart.Add(days(15)),
			want:  StatusExpiredLimitedMode,
		},
		{
			name: "trial precedence over expired paid period",
			facts: &Facts{
				TrialStartedAt: msPtr(trialStart),
				ExpiresAt:      msPtr(trialStart.Add(-days(10))),
			},
			now:  trialStart.Add(days(5)),
			want: StatusTrialActive,
		},
		{
			name:  "active subscription",
			facts: &Facts{ExpiresAt: msPtr(expiry)},
			now:   expiry.Add(-days(1)),
			want:  StatusActiveSubscribed,
		},
		{
			name:  "one day past expiry is grace",
			facts: &Facts{ExpiresAt: msPtr(expiry)},
			now:   expiry.Add(days(1)),
			want:  StatusGracePeriod,
		},
		{
			name:  "four days past expiry is expired",
			facts: &Facts{ExpiresAt: msPtr(expiry)},
			now:   expiry.Add(days(4)),
			want:  StatusExpiredLimitedMode,
		},
		{
			name: "explicit grace marker wins over computed window",
			facts: &Facts{
				ExpiresAt:         msPtr(expiry),
				GracePeriodEndsAt: msPtr(expiry.Add(days(7))),
			},
			now:  expiry.Add(days(5)),
			want: StatusGracePeriod,
		},
		{
			name: "explicit grace marker elapsed",
			facts: &Facts{
				ExpiresAt:         msPtr(expiry),
				GracePeriodEndsAt: msPtr(expiry.Add(days(2))),
			},
			now:  expiry.Add(days(2)),
			want: StatusExpiredLimitedMode,
		},
		{
			name:  "facts present but empty",
			facts: &Facts{},
			now:   baseTime,
			want:  StatusExpiredLimitedMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Evaluate(tt.facts, tt.now))
		})
	}
}

func TestEngine_Evaluate_IsPure(t *testing.T) {
	engine := NewEngine()
	facts := &Facts{
		Status:    StatusActiveSubscribed,
		ExpiresAt: msPtr(baseTime),
	}

	// Status queries never mutate the stored facts
	_ = engine.Evaluate(facts, baseTime.Add(days(30)))
	assert.Equal(t, StatusActiveSubscribed, facts.Status)
	assert.Equal(t, baseTime.UnixMilli(), *facts.ExpiresAt)
}

func TestEngine_StartTrial(t *testing.T) {
	engine := NewEngine()

	facts := engine.StartTrial(baseTime)
	assert.Equal(t, StatusTrialActive, facts.Status)
	assert.Equal(t, baseTime.UnixMilli(), *facts.TrialStartedAt)
	assert.Equal(t, StatusTrialActive, engine.Evaluate(facts, baseTime.Add(days(13))))
	assert.Equal(t, StatusExpiredLimitedMode, engine.Evaluate(facts, baseTime.Add(days(15))))
}

func TestEngine_IsFeatureAvailable(t *testing.T) {
	engine := NewEngine()
	trialStart := baseTime

	trial := &Facts{TrialStartedAt: msPtr(trialStart)}
	active := &Facts{ExpiresAt: msPtr(baseTime.Add(days(30)))}
	grace := &Facts{ExpiresAt: msPtr(baseTime.Add(-days(1)))}
	expired := &Facts{ExpiresAt: msPtr(baseTime.Add(-days(10)))}

	now := baseTime.Add(days(1))

	// custom_boards is gated: open in trial/active/grace, closed when expired
	assert.True(t, engine.IsFeatureAvailable(trial, FeatureCustomBoards, now))
	assert.True(t, engine.IsFeatureAvailable(active, FeatureCustomBoards, now))
	assert.True(t, engine.IsFeatureAvailable(grace, FeatureCustomBoards, now))
	assert.False(t, engine.IsFeatureAvailable(expired, FeatureCustomBoards, now))

	// uninitialized defaults to allow
	assert.True(t, engine.IsFeatureAvailable(nil, FeatureCustomBoards, now))

	// speak is always available regardless of status
	for _, f := range []*Facts{nil, trial, active, grace, expired} {
		assert.True(t, engine.IsFeatureAvailable(f, FeatureSpeak, now))
	}
}

func TestFacts_EncodeDecode(t *testing.T) {
	product := "tapspeak.premium.yearly"
	f := &Facts{
		Status:          StatusActiveSubscribed,
		ExpiresAt:       msPtr(baseTime.Add(days(365))),
		ProductID:       &product,
		LastValidatedAt: baseTime.UnixMilli(),
	}

	raw, err := f.Encode()
	assert.NoError(t, err)

	got, err := DecodeFacts(raw)
	assert.NoError(t, err)
	assert.Equal(t, f, got)
}
