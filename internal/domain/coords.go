package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var latLongRe = regexp.MustCompile(`^-?\d+(\.\d+)?,\s*-?\d+(\.\d+)?$`)

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ParseLatLong parses an editorial "lat, long" string such as "64.144367, -21.939182".
func ParseLatLong(s string) (Coords, error) {
	if !latLongRe.MatchString(s) {
		return Coords{}, &FormatError{Field: "lat_long", Code: "invalid_lat_long", Value: s}
	}
	parts := strings.SplitN(s, ",", 2)
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coords{}, &FormatError{Field: "lat_long", Code: "invalid_lat_long", Value: s}
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coords{}, &FormatError{Field: "lat_long", Code: "invalid_lat_long", Value: s}
	}
	return Coords{Lat: lat, Lon: lon}, nil
}

func (c Coords) Validate() error {
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return &FormatError{Field: "lat_long", Code: "out_of_range", Value: c.String()}
	}
	return nil
}

func (c Coords) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + ", " + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}
