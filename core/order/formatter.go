package order

import (
	"strconv"
	"strings"
)

const (
	// DefaultMapLinkBase points at KakaoMap's coordinate link.
	DefaultMapLinkBase = "https://map.kakao.com/link/map"
	// DefaultPlaceholder stands in for absent optional fields.
	DefaultPlaceholder = "—"
)

// Notification is the structured dispatch record for a completed order.
// Markup is applied by the transport.
type Notification struct {
	OrderID     string
	Service     string
	DisplayName string
	Phone       string
	Username    string
	HasUsername bool
	MapURL      string
	Location    GeoPoint
	UserID      int64
}

// Formatter renders completed orders.
type Formatter struct {
	Catalog     Catalog
	MapLinkBase string
	Placeholder string
}

// Render builds the dispatch record. It never fails.
func (f Formatter) Render(o CompletedOrder) Notification {
	ph := f.Placeholder
	if ph == "" {
		ph = DefaultPlaceholder
	}
	base := f.MapLinkBase
	if base == "" {
		base = DefaultMapLinkBase
	}

	service := f.Catalog.Label(o.Service)
	if service == "" {
		service = ph
	}
	name := o.DisplayName
	if strings.TrimSpace(name) == "" {
		name = ph
	}
	n := Notification{
		OrderID:     o.ID,
		Service:     service,
		DisplayName: name,
		Phone:       string(o.Phone),
		Username:    ph,
		MapURL:      MapLink(base, o.Location),
		Location:    o.Location,
		UserID:      int64(o.UserID),
	}
	if u := strings.TrimPrefix(o.Username, "@"); u != "" {
		n.Username = u
		n.HasUsername = true
	}
	return n
}

// MapLink builds "{base}/{lat},{lon}" using the shortest exact decimal form.
func MapLink(base string, p GeoPoint) string {
	base = strings.TrimRight(base, "/")
	return base + "/" +
		strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}
