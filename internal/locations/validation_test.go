package locations

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/employee-tracker/internal/shared"
)

func TestParseUpdate(t *testing.T) {
	now := time.Date(2025, 10, 23, 11, 55, 15, 987654321, time.UTC)

	in, err := ParseUpdate(UpdateRequest{Lat: "-0.947812", Lng: 100.417523, AccuracyM: "12"}, now)
	require.NoError(t, err)
	assert.InDelta(t, -0.947812, in.Lat, 1e-9)
	assert.InDelta(t, 100.417523, in.Lng, 1e-9)
	require.NotNil(t, in.AccuracyM)
	assert.Equal(t, 12, *in.AccuracyM)
	assert.Equal(t, time.Date(2025, 10, 23, 11, 55, 15, 0, time.UTC), in.RecordedAt)

	in, err = ParseUpdate(UpdateRequest{Lat: 90.0, Lng: -180.0, RecordedAt: "2025-10-20T07:00:00+07:00", AccuracyM: 0.0}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), in.RecordedAt)
	assert.Equal(t, 0, *in.AccuracyM)
}

func TestParseUpdateRejects(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name  string
		req   UpdateRequest
		field string
	}{
		{"missing lat", UpdateRequest{Lng: 1.0}, "lat"},
		{"missing lng", UpdateRequest{Lat: 1.0}, "lng"},
		{"lat out of range", UpdateRequest{Lat: -90.000001, Lng: 1.0}, "lat"},
		{"lng out of range", UpdateRequest{Lat: 1.0, Lng: 180.5}, "lng"},
		{"lat not numeric", UpdateRequest{Lat: "north", Lng: 1.0}, "lat"},
		{"bad recorded_at", UpdateRequest{Lat: 1.0, Lng: 1.0, RecordedAt: "last tuesday"}, "recorded_at"},
		{"fractional accuracy", UpdateRequest{Lat: 1.0, Lng: 1.0, AccuracyM: 2.5}, "accuracy_m"},
		{"accuracy too large", UpdateRequest{Lat: 1.0, Lng: 1.0, AccuracyM: 101.0}, "accuracy_m"},
		{"negative accuracy", UpdateRequest{Lat: 1.0, Lng: 1.0, AccuracyM: -1.0}, "accuracy_m"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseUpdate(tc.req, now)
			var verr *shared.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tc.field)
			assert.Len(t, verr.Fields, 1)
		})
	}
}

func TestParseListFilter(t *testing.T) {
	f, err := ParseListFilter("")
	require.NoError(t, err)
	assert.Nil(t, f.MaxAccuracy)

	f, err = ParseListFilter("50")
	require.NoError(t, err)
	require.NotNil(t, f.MaxAccuracy)
	assert.Equal(t, 50, *f.MaxAccuracy)

	_, err = ParseListFilter("ten")
	assert.Error(t, err)
	_, err = ParseListFilter("-1")
	assert.Error(t, err)
}

func TestParseListFilterFitsInt4(t *testing.T) {
	f, err := ParseListFilter("2147483647")
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, *f.MaxAccuracy)

	_, err = ParseListFilter("3000000000")
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "max_accuracy")
}

func TestDateTimeJSON(t *testing.T) {
	d := DateTime(time.Date(2025, 10, 23, 18, 55, 15, 0, time.FixedZone("WIB", 7*3600)))
	raw, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2025-10-23 11:55:15"`, string(raw))

	var back DateTime
	require.NoError(t, back.UnmarshalJSON(raw))
	assert.True(t, back.Time().Equal(d.Time()))
}
