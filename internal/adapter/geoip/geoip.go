// Package geoip locates client addresses using a MaxMind City database.
package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"github.com/vadimbarashkov/shorturls/internal/entity"
)

const namesLang = "en"

type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// Locator looks up client addresses in a MaxMind City database.
type Locator struct {
	reader cityReader
}

// Open opens the MaxMind City database at path.
func Open(path string) (*Locator, error) {
	const op = "adapter.geoip.Open"

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open geoip database: %w", op, err)
	}

	return &Locator{reader: reader}, nil
}

// Locate returns the location of remoteAddr, which may carry a port.
// Loopback, private and unknown addresses yield nil.
func (l *Locator) Locate(remoteAddr string) *entity.Location {
	ip := clientIP(remoteAddr)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return nil
	}

	rec, err := l.reader.City(ip)
	if err != nil || rec.Country.IsoCode == "" {
		return nil
	}

	loc := &entity.Location{
		Country:  rec.Country.IsoCode,
		City:     rec.City.Names[namesLang],
		Timezone: rec.Location.TimeZone,
	}
	if len(rec.Subdivisions) > 0 {
		loc.Region = rec.Subdivisions[0].IsoCode
	}

	return loc
}

func (l *Locator) Close() error {
	return l.reader.Close()
}

func clientIP(remoteAddr string) net.IP {
	host := strings.TrimSpace(remoteAddr)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	return net.ParseIP(strings.Trim(host, "[]"))
}

// Nop is a locator that never knows where a client is.
type Nop struct{}

func (Nop) Locate(string) *entity.Location { return nil }
