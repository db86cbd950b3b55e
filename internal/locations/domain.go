package locations

import (
	"encoding/json"
	"time"
)

// UnknownUserName stands in for the owner of a row whose user no longer resolves.
const UnknownUserName = "Unknown"

// DateTimeLayout is the wire format of recorded_at.
const DateTimeLayout = "2006-01-02 15:04:05"

// Location is the single latest position kept per user.
type Location struct {
	ID         int64
	UserID     int64
	Lat        float64
	Lng        float64
	RecordedAt time.Time
	AccuracyM  *int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// View is the client-facing projection of a Location joined with its owner's name.
type View struct {
	UserID     int64    `json:"user_id"`
	UserName   string   `json:"user_name"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	RecordedAt DateTime `json:"recorded_at"`
	AccuracyM  *int     `json:"accuracy_m"`
}

// ListFilter narrows List. A nil MaxAccuracy returns every row.
type ListFilter struct {
	MaxAccuracy *int
}

// UpsertInput is a validated location update.
type UpsertInput struct {
	Lat        float64
	Lng        float64
	RecordedAt time.Time
	AccuracyM  *int
}

// UpdateRequest carries the decoded update payload before schema checks.
type UpdateRequest struct {
	Lat        any `json:"lat"`
	Lng        any `json:"lng"`
	RecordedAt any `json:"recorded_at"`
	AccuracyM  any `json:"accuracy_m"`
}

// DateTime renders as "YYYY-MM-DD HH:MM:SS" in UTC.
type DateTime time.Time

// MarshalJSON implements json.Marshaler.
func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).UTC().Format(DateTimeLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := time.ParseInLocation(DateTimeLayout, raw, time.UTC)
	if err != nil {
		return err
	}
	*d = DateTime(t)
	return nil
}

// Time returns the underlying time.
func (d DateTime) Time() time.Time {
	return time.Time(d)
}

// ViewOf projects loc with the given owner name.
func ViewOf(loc *Location, userName string) View {
	if userName == "" {
		userName = UnknownUserName
	}
	return View{
		UserID:     loc.UserID,
		UserName:   userName,
		Lat:        loc.Lat,
		Lng:        loc.Lng,
		RecordedAt: DateTime(loc.RecordedAt),
		AccuracyM:  loc.AccuracyM,
	}
}
