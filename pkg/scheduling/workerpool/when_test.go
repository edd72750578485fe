package workerpool

import (
	"testing"
	"time"

	"github.com/vnykmshr/chronoflow/internal/testutil"
)

func TestWhenResolve(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	foreign := testutil.NewMockClock(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		when When
		want time.Time
	}{
		{"zero value", When{}, now.Add(-time.Microsecond)},
		{"asap", ASAP(), now.Add(-time.Microsecond)},
		{"after", After(5 * time.Second), now.Add(5 * time.Second)},
		{"after negative", After(-time.Second), now.Add(-time.Second)},
		{"at", At(now.Add(3 * time.Second)), now.Add(3 * time.Second)},
		{"at past", At(now.Add(-time.Hour)), now.Add(-time.Hour)},
		{"at clock", AtClock(foreign, foreign.Now().Add(2*time.Second)), now.Add(2 * time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.when.resolve(now)
			testutil.AssertEqual(t, got.Equal(tt.want), true)
		})
	}
}

func TestASAPIsAlreadyDue(t *testing.T) {
	now := time.Now()
	testutil.AssertEqual(t, ASAP().resolve(now).Before(now), true)
}

func TestWhenString(t *testing.T) {
	testutil.AssertEqual(t, ASAP().String(), "asap")
	testutil.AssertEqual(t, After(time.Second).String(), "after 1s")

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testutil.AssertEqual(t, At(at).String(), "at 2024-03-01T12:00:00Z")
}
