package location

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tjweather/internal/types"
)

var (
	ErrInvalidLocation  = errors.New("invalid location")
	ErrInvalidFormat    = fmt.Errorf("%w: expected \"longitude,latitude\"", ErrInvalidLocation)
	ErrInvalidLongitude = fmt.Errorf("%w: longitude must be within [-180,180] or [0,360]", ErrInvalidLocation)
	ErrInvalidLatitude  = fmt.Errorf("%w: latitude must be within [-90,90]", ErrInvalidLocation)
)

// decimal matches a plain decimal number: optional sign, digits with an
// optional fraction, optional exponent.
var decimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Validate reports whether raw is a "longitude,latitude" pair inside the
// accepted coordinate domain.
func Validate(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// Parse splits raw on its single comma and checks both components. Longitude
// is accepted under either the signed [-180,180] or the unsigned [0,360]
// convention and is returned as given.
func Parse(raw string) (types.Coords, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return types.Coords{}, ErrInvalidFormat
	}

	lon, ok := parseDecimal(parts[0])
	if !ok {
		return types.Coords{}, ErrInvalidFormat
	}
	lat, ok := parseDecimal(parts[1])
	if !ok {
		return types.Coords{}, ErrInvalidFormat
	}

	if !validLongitude(lon) {
		return types.Coords{}, ErrInvalidLongitude
	}
	if lat < -90 || lat > 90 {
		return types.Coords{}, ErrInvalidLatitude
	}

	return types.NewCoordsFromText(lon, lat, parts[0], parts[1]), nil
}

func parseDecimal(s string) (float64, bool) {
	if !decimal.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func validLongitude(lon float64) bool {
	return (lon >= -180 && lon <= 180) || (lon >= 0 && lon <= 360)
}
