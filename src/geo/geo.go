// Package geo enriches client IP addresses with geolocation metadata from a
// local MaxMind city database. The database is opened once and held by the
// Resolver; lookups are read-only and never touch the network.
package geo

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrInvalidIP is returned when the input is not a parsable IP address.
var ErrInvalidIP = errors.New("invalid IP address")

// Record is the fixed-shape geolocation result for one IP.
type Record struct {
	IP           string  `json:"clientip"`
	CountryShort string  `json:"country_short"`
	CountryLong  string  `json:"country_long"`
	Region       string  `json:"region"`
	City         string  `json:"city"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// Resolver wraps one open geolocation database handle. It is safe for
// sequential use; close it at process teardown.
type Resolver struct {
	db *geoip2.Reader
}

// OpenResolver opens the database at path.
func OpenResolver(path string) (*Resolver, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geolocation database %s: %w", path, err)
	}
	return &Resolver{db: db}, nil
}

// Close releases the database handle.
func (r *Resolver) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Resolve looks up ipStr and maps the city-level result into a Record.
// Malformed input fails with ErrInvalidIP before the database is consulted.
func (r *Resolver) Resolve(ipStr string) (Record, error) {
	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil {
		return Record{}, fmt.Errorf("%w: %q", ErrInvalidIP, ipStr)
	}
	city, err := r.db.City(ip)
	if err != nil {
		return Record{}, fmt.Errorf("lookup %s: %w", ip, err)
	}
	rec := Record{
		IP:           ip.String(),
		CountryShort: city.Country.IsoCode,
		CountryLong:  city.Country.Names["en"],
		City:         city.City.Names["en"],
		Latitude:     city.Location.Latitude,
		Longitude:    city.Location.Longitude,
	}
	if len(city.Subdivisions) > 0 {
		rec.Region = city.Subdivisions[0].Names["en"]
	}
	return rec, nil
}

// DefaultDatabasePath returns the GEOIP_DB environment variable when set,
// otherwise probes a few well-known locations and falls back to the
// repository-local data directory.
func DefaultDatabasePath() string {
	if p := os.Getenv("GEOIP_DB"); p != "" {
		return p
	}
	paths := []string{
		"data/GeoLite2-City.mmdb",
		"/usr/share/GeoIP/GeoLite2-City.mmdb",
		"/usr/local/share/GeoIP/GeoLite2-City.mmdb",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return paths[0]
}
