package order

import (
	"fmt"
	"strings"
)

// ServiceKind enumerates the services a user can order.
type ServiceKind int

const (
	// ServiceNone marks a session whose location or phone arrived before any service selection.
	ServiceNone ServiceKind = iota
	ServiceTaxi
	ServiceDelivery
	ServiceSoberDriver
	ServiceCarRelocation
)

// AllServices lists the selectable services in menu order.
var AllServices = []ServiceKind{ServiceTaxi, ServiceDelivery, ServiceSoberDriver, ServiceCarRelocation}

var serviceKeys = map[ServiceKind]string{
	ServiceNone:          "none",
	ServiceTaxi:          "taxi",
	ServiceDelivery:      "delivery",
	ServiceSoberDriver:   "sober_driver",
	ServiceCarRelocation: "car_relocation",
}

// String returns the stable machine key used in config, logs and metrics.
func (k ServiceKind) String() string {
	if s, ok := serviceKeys[k]; ok {
		return s
	}
	return fmt.Sprintf("service(%d)", int(k))
}

// ParseServiceKind maps a config key such as "sober_driver" back to its ServiceKind.
func ParseServiceKind(key string) (ServiceKind, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, k := range AllServices {
		if serviceKeys[k] == key {
			return k, true
		}
	}
	return ServiceNone, false
}

// DefaultLabels are the reply-keyboard labels of the four services.
var DefaultLabels = map[ServiceKind]string{
	ServiceTaxi:          "Такси 🚕",
	ServiceDelivery:      "Доставка 🛵",
	ServiceSoberDriver:   "Трезвый водитель 😇",
	ServiceCarRelocation: "Перегон автомобиля 🚗",
}

// Catalog maps button labels to services. Matching is exact.
type Catalog struct {
	labels  map[ServiceKind]string
	byLabel map[string]ServiceKind
}

// NewCatalog validates that every service has a distinct, non-empty label.
func NewCatalog(labels map[ServiceKind]string) (Catalog, error) {
	c := Catalog{
		labels:  make(map[ServiceKind]string, len(AllServices)),
		byLabel: make(map[string]ServiceKind, len(AllServices)),
	}
	for _, k := range AllServices {
		label := labels[k]
		if strings.TrimSpace(label) == "" {
			return Catalog{}, fmt.Errorf("order: missing label for service %s", k)
		}
		if prev, dup := c.byLabel[label]; dup {
			return Catalog{}, fmt.Errorf("order: label %q used by both %s and %s", label, prev, k)
		}
		c.labels[k] = label
		c.byLabel[label] = k
	}
	for k := range labels {
		if _, ok := c.labels[k]; !ok {
			return Catalog{}, fmt.Errorf("order: unknown service %s in labels", k)
		}
	}
	return c, nil
}

// DefaultCatalog returns the catalog built from DefaultLabels.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(DefaultLabels)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup resolves a button label to its service.
func (c Catalog) Lookup(text string) (ServiceKind, bool) {
	k, ok := c.byLabel[text]
	return k, ok
}

// Label returns the button label of a service, or "" for ServiceNone.
func (c Catalog) Label(k ServiceKind) string {
	return c.labels[k]
}

// Labels returns all labels in menu order.
func (c Catalog) Labels() []string {
	out := make([]string, 0, len(AllServices))
	for _, k := range AllServices {
		if l, ok := c.labels[k]; ok {
			out = append(out, l)
		}
	}
	return out
}
