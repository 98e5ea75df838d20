package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderFullOrder(t *testing.T) {
	f := Formatter{Catalog: DefaultCatalog(), MapLinkBase: "https://maps.example/link/"}
	n := f.Render(CompletedOrder{
		ID:          "abc",
		UserID:      555,
		Service:     ServiceSoberDriver,
		DisplayName: "Ivan Petrov",
		Username:    "ivanp",
		Phone:       "+82 10-0000-0000",
		Location:    GeoPoint{Latitude: 37.5, Longitude: 127.0},
	})

	assert.Equal(t, "abc", n.OrderID)
	assert.Equal(t, "Трезвый водитель 😇", n.Service)
	assert.Equal(t, "Ivan Petrov", n.DisplayName)
	assert.Equal(t, "+82 10-0000-0000", n.Phone, "phone is forwarded verbatim")
	assert.Equal(t, "ivanp", n.Username)
	assert.True(t, n.HasUsername)
	assert.Equal(t, "https://maps.example/link/37.5,127", n.MapURL)
	assert.Equal(t, int64(555), n.UserID)
}

func TestRenderPlaceholders(t *testing.T) {
	f := Formatter{Catalog: DefaultCatalog()}
	n := f.Render(CompletedOrder{Service: ServiceNone, Location: GeoPoint{Latitude: -33.865143, Longitude: 151.2099}})

	assert.Equal(t, DefaultPlaceholder, n.Service)
	assert.Equal(t, DefaultPlaceholder, n.DisplayName)
	assert.Equal(t, DefaultPlaceholder, n.Username)
	assert.False(t, n.HasUsername)
	assert.Equal(t, DefaultMapLinkBase+"/-33.865143,151.2099", n.MapURL)
}

func TestMapLink(t *testing.T) {
	assert.Equal(t, "https://map.kakao.com/link/map/1.25,2", MapLink(DefaultMapLinkBase, GeoPoint{Latitude: 1.25, Longitude: 2}))
	assert.Equal(t, "base/0,0", MapLink("base///", GeoPoint{}))
}

func TestGeoPointFrom32KeepsSentDigits(t *testing.T) {
	p := GeoPointFrom32(36.6424, 127.489)
	assert.Equal(t, GeoPoint{Latitude: 36.6424, Longitude: 127.489}, p)
	assert.Equal(t, DefaultMapLinkBase+"/36.6424,127.489", MapLink(DefaultMapLinkBase, p))

	p = GeoPointFrom32(-33.8651, 151.209)
	assert.Equal(t, DefaultMapLinkBase+"/-33.8651,151.209", MapLink(DefaultMapLinkBase, p))
}
