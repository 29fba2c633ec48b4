package types

import "strconv"

// Coords is a parsed "longitude,latitude" pair. The text of each component is
// kept as typed so the pair can be written back out without reformatting.
// Longitude is stored in whichever convention the caller used ([-180,180] or
// [0,360]); it is never normalized.
type Coords struct {
	Longitude float64
	Latitude  float64

	lonText string
	latText string
}

// NewCoords builds a Coords from numeric values, formatting them in the
// shortest decimal form.
func NewCoords(longitude, latitude float64) Coords {
	return Coords{
		Longitude: longitude,
		Latitude:  latitude,
		lonText:   strconv.FormatFloat(longitude, 'f', -1, 64),
		latText:   strconv.FormatFloat(latitude, 'f', -1, 64),
	}
}

// NewCoordsFromText builds a Coords from already-parsed values and the text
// they were parsed from.
func NewCoordsFromText(longitude, latitude float64, lonText, latText string) Coords {
	return Coords{
		Longitude: longitude,
		Latitude:  latitude,
		lonText:   lonText,
		latText:   latText,
	}
}

// LongitudeText returns the longitude as it was supplied.
func (c Coords) LongitudeText() string {
	if c.lonText == "" {
		return strconv.FormatFloat(c.Longitude, 'f', -1, 64)
	}
	return c.lonText
}

// LatitudeText returns the latitude as it was supplied.
func (c Coords) LatitudeText() string {
	if c.latText == "" {
		return strconv.FormatFloat(c.Latitude, 'f', -1, 64)
	}
	return c.latText
}

// String formats the pair in the upstream "lon,lat" form.
func (c Coords) String() string {
	return c.LongitudeText() + "," + c.LatitudeText()
}

// SignedLongitude maps a [0,360] longitude into [-180,180]. Only used for
// lookups that require the signed convention; requests keep the original.
func (c Coords) SignedLongitude() float64 {
	if c.Longitude > 180 {
		return c.Longitude - 360
	}
	return c.Longitude
}
