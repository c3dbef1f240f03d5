package model

import "strings"

// Location is a map position for a cinema.
type Location struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom float32 `json:"zoom"`
}

// DefaultLocation is where the cinema picker opens for a movie that has no
// location yet.
var DefaultLocation = Location{Lat: 52.245696, Lng: -7.139102, Zoom: 15}

// Location returns the movie's cinema position, or DefaultLocation when
// none has been set.
func (m Movie) Location() Location {
	if m.Zoom == 0 {
		return DefaultLocation
	}
	return Location{Lat: m.Lat, Lng: m.Lng, Zoom: m.Zoom}
}

// SetLocation stores a picked cinema position.  The cinema name and
// address only replace the current values when the picker supplied them.
func (m *Movie) SetLocation(loc Location, cinema, address string) {
	m.Lat = loc.Lat
	m.Lng = loc.Lng
	m.Zoom = loc.Zoom
	if c := strings.TrimSpace(cinema); c != "" {
		m.Cinema = c
	}
	if a := strings.TrimSpace(address); a != "" {
		m.CinemaAddress = a
	}
}
