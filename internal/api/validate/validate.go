// Package validate holds the small request-level checks the handlers share:
// coordinate parsing and the optional numeric query parameters.
package validate

import (
	"fmt"
	"strconv"

	"github.com/vibelink/vibelink-server/internal/model"
)

// NonEmpty reports an error naming the field when v is empty.
func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// MaxLen reports an error when v exceeds limit bytes.
func MaxLen(field, v string, limit int) error {
	if len(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// Coordinates parses the mandatory lat/lng query parameters into a Point.
func Coordinates(latStr, lngStr string) (model.Point, error) {
	if latStr == "" || lngStr == "" {
		return model.Point{}, fmt.Errorf("lat and lng are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("lat must be a number")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("lng must be a number")
	}
	return model.Point{Longitude: lng, Latitude: lat}, nil
}

// PositiveFloat parses an optional query parameter. Empty yields zero (the
// caller's default); anything present must parse and be positive.
func PositiveFloat(field, v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%s must be positive", field)
	}
	return f, nil
}

// PositiveInt parses an optional query parameter. Empty yields zero (the
// caller's default); anything present must parse and be positive.
func PositiveInt(field, v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", field)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", field)
	}
	return n, nil
}
