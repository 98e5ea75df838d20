package order

import (
	"strconv"
	"time"
)

// UserID identifies a conversation participant; it keys all session state.
type UserID int64

// GeoPoint is a coordinate pair as received from the transport. It is never split.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// GeoPointFrom32 widens float32 coordinates keeping their shortest decimal form,
// so 36.6424 stays 36.6424 rather than 36.642398834228516.
func GeoPointFrom32(lat, lng float32) GeoPoint {
	return GeoPoint{Latitude: widen32(lat), Longitude: widen32(lng)}
}

func widen32(v float32) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'f', -1, 32), 64)
	if err != nil {
		return float64(v)
	}
	return f
}

// PhoneNumber is stored and forwarded verbatim.
type PhoneNumber string

// Identity carries the display fields of the user placing the order.
type Identity struct {
	DisplayName string
	Username    string
}

func (i Identity) empty() bool {
	return i.DisplayName == "" && i.Username == ""
}

// Session is one user's in-progress order.
type Session struct {
	Service  ServiceKind
	Location *GeoPoint
	Phone    *PhoneNumber
	Identity Identity

	StartedAt time.Time
	UpdatedAt time.Time
}

// Complete reports whether the session has both a location and a phone.
// The service may still be ServiceNone.
func (s Session) Complete() bool {
	return s.Location != nil && s.Phone != nil
}

// CompletedOrder is produced exactly once per completed session.
type CompletedOrder struct {
	ID          string
	UserID      UserID
	Service     ServiceKind
	DisplayName string
	Username    string
	Phone       PhoneNumber
	Location    GeoPoint
	StartedAt   time.Time
	CompletedAt time.Time
}
