package timezone

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/ringsaturn/tzf"
)

// Service provides timezone lookup functionality
type Service interface {
	GetTimezone(latitude, longitude float64) (string, error)
	// OffsetHours returns the whole-hour UTC offset in effect at the
	// coordinates at the given instant.
	OffsetHours(latitude, longitude float64, at time.Time) (int, error)
}

// service implements timezone lookup using tzf
type service struct {
	finder tzf.F
	mu     sync.RWMutex
}

var (
	instance *service
	once     sync.Once
	initErr  error
)

// NewService creates or returns the singleton timezone service
// Uses singleton pattern because tzf.Finder loads timezone data into memory
func NewService() (Service, error) {
	once.Do(func() {
		finder, findErr := tzf.NewDefaultFinder()
		if findErr != nil {
			initErr = fmt.Errorf("failed to initialize timezone finder: %w", findErr)
			return
		}
		instance = &service{
			finder: finder,
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return instance, nil
}

// GetTimezone returns the IANA timezone name for the given coordinates
// Returns timezone names like "Asia/Shanghai", "Europe/London", etc.
// Longitude must be in the signed [-180,180] convention.
func (s *service) GetTimezone(latitude, longitude float64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	timezone := s.finder.GetTimezoneName(longitude, latitude)
	if timezone == "" {
		return "", fmt.Errorf("could not determine timezone for coordinates lat=%f, lon=%f", latitude, longitude)
	}

	return timezone, nil
}

func (s *service) OffsetHours(latitude, longitude float64, at time.Time) (int, error) {
	name, err := s.GetTimezone(latitude, longitude)
	if err != nil {
		return 0, err
	}
	return OffsetHoursIn(name, at)
}

// OffsetHoursIn returns the whole-hour UTC offset of the named zone at the
// given instant. Half-hour zones are truncated toward zero.
func OffsetHoursIn(name string, at time.Time) (int, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return 0, fmt.Errorf("failed to load timezone location %s: %w", name, err)
	}
	_, offset := at.In(loc).Zone()
	return offset / 3600, nil
}
