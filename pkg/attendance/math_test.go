package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/bunkmate/bunkmate-api/pkg/errors"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		name     string
		attended int
		total    int
		want     float64
	}{
		{"zero total", 0, 0, 0},
		{"exactly threshold", 15, 20, 75},
		{"below threshold", 14, 20, 70},
		{"rounds to two decimals", 1, 3, 33.33},
		{"rounds half up", 19, 21, 90.48},
		{"attended above total", 25, 20, 125},
		{"full attendance", 20, 20, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Percentage(tc.attended, tc.total)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPercentageRejectsNegativeCounts(t *testing.T) {
	_, err := Percentage(-1, 10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = Percentage(1, -10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPercentageMonotonicInAttended(t *testing.T) {
	prev := -1.0
	for attended := 0; attended <= 30; attended++ {
		got, err := Percentage(attended, 30)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestClassesNeeded(t *testing.T) {
	cases := []struct {
		name     string
		attended int
		total    int
		want     int
	}{
		{"empty ledger", 0, 0, 0},
		{"already at threshold", 15, 20, 0},
		{"above threshold", 19, 20, 0},
		{"seventy percent needs four", 14, 20, 4},
		{"zero attended", 0, 10, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ClassesNeeded(tc.attended, tc.total, DefaultThreshold)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassesNeededIsMinimal(t *testing.T) {
	// The result must be the smallest n such that attending the next n
	// classes reaches the threshold.
	for attended := 0; attended <= 20; attended++ {
		for total := attended; total <= 25; total++ {
			n, err := ClassesNeeded(attended, total, DefaultThreshold)
			require.NoError(t, err)

			after, err := Percentage(attended+n, total+n)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, after, float64(DefaultThreshold), "attended=%d total=%d n=%d", attended, total, n)

			if n > 0 {
				short, err := Percentage(attended+n-1, total+n-1)
				require.NoError(t, err)
				assert.Less(t, short, float64(DefaultThreshold), "attended=%d total=%d n=%d", attended, total, n)
			}
		}
	}
}

func TestBunkSlack(t *testing.T) {
	cases := []struct {
		name     string
		attended int
		total    int
		want     int
	}{
		{"exactly at threshold", 15, 20, 0},
		{"below threshold", 14, 20, 0},
		{"near perfect", 19, 20, 5},
		{"perfect small ledger", 3, 3, 1},
		{"empty ledger", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BunkSlack(tc.attended, tc.total, DefaultThreshold)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBunkSlackIsMaximal(t *testing.T) {
	// The result must be the largest n such that missing the next n
	// classes keeps the percentage at or above the threshold.
	for attended := 0; attended <= 20; attended++ {
		for total := attended; total <= 25; total++ {
			n, err := BunkSlack(attended, total, DefaultThreshold)
			require.NoError(t, err)

			after, err := Percentage(attended, total+n)
			require.NoError(t, err)

			current, err := Percentage(attended, total)
			require.NoError(t, err)
			if current < DefaultThreshold {
				assert.Zero(t, n, "attended=%d total=%d", attended, total)
				continue
			}

			assert.GreaterOrEqual(t, after, float64(DefaultThreshold), "attended=%d total=%d n=%d", attended, total, n)
			over, err := Percentage(attended, total+n+1)
			require.NoError(t, err)
			assert.Less(t, over, float64(DefaultThreshold), "attended=%d total=%d n=%d", attended, total, n)
		}
	}
}

func TestStatusBands(t *testing.T) {
	assert.Equal(t, StatusSafe, Status(75, DefaultThreshold, WarningThreshold))
	assert.Equal(t, StatusWarning, Status(74.99, DefaultThreshold, WarningThreshold))
	assert.Equal(t, StatusWarning, Status(70, DefaultThreshold, WarningThreshold))
	assert.Equal(t, StatusCritical, Status(69.99, DefaultThreshold, WarningThreshold))
	assert.Equal(t, StatusSafe, Status(100, DefaultThreshold, WarningThreshold))
}

func TestPredict(t *testing.T) {
	got, err := Predict(15, 20, 5)
	require.NoError(t, err)
	assert.Equal(t, 60.0, got)

	_, err = Predict(15, 20, -1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPredictZeroMatchesPercentage(t *testing.T) {
	for attended := 0; attended <= 15; attended++ {
		for total := attended; total <= 18; total++ {
			current, err := Percentage(attended, total)
			require.NoError(t, err)
			projected, err := Predict(attended, total, 0)
			require.NoError(t, err)
			assert.Equal(t, current, projected)
		}
	}
}

func TestThresholdValidation(t *testing.T) {
	_, err := ClassesNeeded(10, 20, 0)
	require.Error(t, err)
	_, err = ClassesNeeded(10, 20, 100)
	require.Error(t, err)
	_, err = BunkSlack(10, 20, -5)
	require.Error(t, err)
}
