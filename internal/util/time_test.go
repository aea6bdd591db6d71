package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeProvider(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		now      string
		wantLoc  string
		wantNow  string
		wantErr  bool
	}{
		{
			name:     "frozen now in New York",
			timezone: "America/New_York",
			now:      "2024-07-20T20:30:55Z",
			wantLoc:  "America/New_York",
			wantNow:  "2024-07-20T16:30:55-04:00",
		},
		{
			name:     "leading colon is ignored",
			timezone: ":Asia/Shanghai",
			now:      "2024-07-20T20:30:55Z",
			wantLoc:  "Asia/Shanghai",
			wantNow:  "2024-07-21T04:30:55+08:00",
		},
		{
			name:     "invalid timezone falls back to UTC",
			timezone: "Invalid/Timezone",
			now:      "2024-07-20T20:30:55Z",
			wantLoc:  "UTC",
			wantNow:  "2024-07-20T20:30:55Z",
		},
		{
			name:     "invalid frozen now",
			timezone: "UTC",
			now:      "yesterday",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := NewTimeProvider(tt.timezone, tt.now)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "BIFF_NOW")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLoc, tp.Location().String())
			assert.Equal(t, tt.wantNow, tp.Now().Format(time.RFC3339))
		})
	}
}

func TestNewTimeProviderUsesClock(t *testing.T) {
	before := time.Now()
	tp, err := NewTimeProvider("UTC", "")
	require.NoError(t, err)
	assert.False(t, tp.Now().Before(before))
	assert.Equal(t, time.UTC, tp.Location())
}

func TestSystemLocation(t *testing.T) {
	loc, err := SystemLocation("Europe/London")
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", loc.String())

	_, err = SystemLocation("Not/AZone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone 'Not/AZone'")
}

func TestZoneNameFromPath(t *testing.T) {
	assert.Equal(t, "America/New_York", zoneNameFromPath("/usr/share/zoneinfo/America/New_York"))
	assert.Equal(t, "UTC", zoneNameFromPath("/tmp/UTC"))
}
