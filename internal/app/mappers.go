package app

import (
	"fmt"
	"strconv"
	"strings"

	"bakery_locations/internal/domain"
)

/********** alias registries (single source of truth) **********/

var locationAliases = map[string][]string{
	"slug":         {"slug", "meta.slug", "handle"},
	"title":        {"title", "name", "location_name"},
	"introduction": {"introduction", "intro", "summary", "search_description"},
	"address":      {"address", "address.line", "full_address", "street_address", "location.address"},
	"lat_long":     {"lat_long", "latlong", "lat_lng", "coordinates"},
	"lat":          {"lat", "latitude", "location.lat", "geo.lat"},
	"lon":          {"lon", "lng", "long", "longitude", "location.lon", "location.lng", "geo.lon", "geo.lng"},
	"hours":        {"hours_of_operation", "operating_hours", "opening_hours", "hours"},
	"live":         {"live", "published", "is_live"},
}

var hoursAliases = map[string][]string{
	"day":     {"day", "weekday", "day_of_week"},
	"opening": {"opening_time", "open", "opens", "open_time"},
	"closing": {"closing_time", "close", "closes", "close_time"},
	"closed":  {"closed", "is_closed"},
	"order":   {"sort_order", "order", "position"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// firstFloat: number from several paths (float64/int/string like "64,1").
func firstFloat(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func firstInt(m map[string]any, paths ...string) int {
	if f := firstFloat(m, paths...); f != nil {
		return int(*f)
	}
	return 0
}

// firstBool accepts JSON booleans and "true"/"yes"/"1" style strings.
func firstBool(m map[string]any, def bool, paths ...string) bool {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case bool:
			return v
		case float64:
			return v != 0
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "yes", "y", "1":
				return true
			case "false", "no", "n", "0":
				return false
			}
		}
	}
	return def
}

func firstSlice(m map[string]any, paths ...string) []any {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			return raw
		}
	}
	return nil
}

/********** mappers **********/

// mapLocation turns a raw feed payload into a Location. slug wins over any slug in the payload.
func mapLocation(slug string, p map[string]any) (domain.Location, error) {
	l := domain.Location{
		Slug:         slug,
		Title:        firstAlias(p, locationAliases, "title"),
		Introduction: firstAlias(p, locationAliases, "introduction"),
		Address:      firstAlias(p, locationAliases, "address"),
		Live:         firstBool(p, true, locationAliases["live"]...),
	}
	if l.Slug == "" {
		l.Slug = firstAlias(p, locationAliases, "slug")
	}

	coords, err := mapCoords(p)
	if err != nil {
		return domain.Location{}, err
	}
	l.Coords = coords

	hours, err := mapHours(firstSlice(p, locationAliases["hours"]...))
	if err != nil {
		return domain.Location{}, err
	}
	l.Hours = hours
	return l, nil
}

// mapCoords prefers the editorial "lat, long" string and falls back to separate numbers.
func mapCoords(p map[string]any) (domain.Coords, error) {
	if s := firstAlias(p, locationAliases, "lat_long"); s != "" {
		return domain.ParseLatLong(s)
	}
	lat := firstFloat(p, locationAliases["lat"]...)
	lon := firstFloat(p, locationAliases["lon"]...)
	if lat == nil || lon == nil {
		return domain.Coords{}, &domain.FormatError{Field: "lat_long", Code: "missing"}
	}
	return domain.Coords{Lat: *lat, Lon: *lon}, nil
}

func mapHours(raw []any) (domain.Schedule, error) {
	out := make(domain.Schedule, 0, len(raw))
	for i, it := range raw {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, &domain.FormatError{Field: "hours_of_operation", Code: "invalid_entry", Value: fmt.Sprint(it)}
		}
		day, err := domain.ParseWeekday(firstAlias(m, hoursAliases, "day"))
		if err != nil {
			return nil, err
		}
		h := domain.OperatingHours{
			Day:       day,
			Closed:    firstBool(m, false, hoursAliases["closed"]...),
			SortOrder: i,
		}
		if _, ok := firstPresent(m, hoursAliases["order"]...); ok {
			h.SortOrder = firstInt(m, hoursAliases["order"]...)
		}
		if h.Opening, err = optionalClock(firstAlias(m, hoursAliases, "opening")); err != nil {
			return nil, err
		}
		if h.Closing, err = optionalClock(firstAlias(m, hoursAliases, "closing")); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func firstPresent(m map[string]any, paths ...string) (any, bool) {
	for _, p := range paths {
		if v := lookupAny(m, p); v != nil {
			return v, true
		}
	}
	return nil, false
}

func optionalClock(s string) (*domain.TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}
	t, err := domain.ParseTimeOfDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
