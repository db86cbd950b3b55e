package locations

import (
	"math"
	"strings"
	"time"

	"github.com/noah-isme/employee-tracker/internal/platform/validate"
)

const (
	minLat      = -90
	maxLat      = 90
	minLng      = -180
	maxLng      = 180
	minAccuracy = 0
	maxAccuracy = 100
)

// ParseUpdate checks an update payload. A missing recorded_at becomes now.
func ParseUpdate(req UpdateRequest, now time.Time) (UpsertInput, error) {
	schema := validate.New()
	lat, ok := schema.Number("lat", req.Lat, true)
	if ok {
		schema.Between("lat", lat, minLat, maxLat)
	}
	lng, ok := schema.Number("lng", req.Lng, true)
	if ok {
		schema.Between("lng", lng, minLng, maxLng)
	}
	recordedAt, ok := schema.DateTime("recorded_at", req.RecordedAt)
	if !ok {
		recordedAt = now
	}
	var accuracy *int
	if acc, ok := schema.Integer("accuracy_m", req.AccuracyM, false); ok {
		schema.Range("accuracy_m", acc, minAccuracy, maxAccuracy)
		accuracy = &acc
	}
	if err := schema.Err(); err != nil {
		return UpsertInput{}, err
	}
	return UpsertInput{
		Lat:        lat,
		Lng:        lng,
		RecordedAt: recordedAt.UTC().Truncate(time.Second),
		AccuracyM:  accuracy,
	}, nil
}

// ParseListFilter reads the optional max_accuracy query value.
func ParseListFilter(maxAccuracyParam string) (ListFilter, error) {
	if strings.TrimSpace(maxAccuracyParam) == "" {
		return ListFilter{}, nil
	}
	schema := validate.New()
	v, ok := schema.Integer("max_accuracy", maxAccuracyParam, false)
	if ok {
		schema.Range("max_accuracy", v, minAccuracy, math.MaxInt32)
	}
	if err := schema.Err(); err != nil {
		return ListFilter{}, err
	}
	return ListFilter{MaxAccuracy: &v}, nil
}
