// Package wilayah resolves Indonesian administrative regions (province,
// regency, district, village) and keeps the four dependent selections of
// an address form consistent.
package wilayah

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcmexdev/bizops-dashboard/internal/pkg/apperr"
)

type Level string

const (
	LevelProvince Level = "provinces"
	LevelRegency  Level = "regencies"
	LevelDistrict Level = "districts"
	LevelVillage  Level = "villages"
)

// ParseLevel accepts the plural path names used in URLs.
func ParseLevel(s string) (Level, error) {
	switch l := Level(s); l {
	case LevelProvince, LevelRegency, LevelDistrict, LevelVillage:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// Singular is the level name used in messages, e.g. "province".
func (l Level) Singular() string {
	switch l {
	case LevelProvince:
		return "province"
	case LevelRegency:
		return "regency"
	case LevelDistrict:
		return "district"
	case LevelVillage:
		return "village"
	default:
		return string(l)
	}
}

// Parent is the level whose code selects a list of l. Provinces have none.
func (l Level) Parent() Level {
	switch l {
	case LevelRegency:
		return LevelProvince
	case LevelDistrict:
		return LevelRegency
	case LevelVillage:
		return LevelDistrict
	default:
		return ""
	}
}

type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Source lists the regions of a level below parentCode. parentCode is
// empty for provinces.
type Source interface {
	Regions(ctx context.Context, level Level, parentCode string) ([]Region, error)
}

var (
	ErrUnknownLevel   = apperr.New(apperr.Invalid, "wilayah: unknown level")
	ErrParentRequired = apperr.New(apperr.Invalid, "wilayah: parent code is required")
	// ErrOptionsNotLoaded means a child level had no options to select from.
	ErrOptionsNotLoaded = apperr.New(apperr.Unavailable, "wilayah: options not loaded")
)

// FetchError is a failed lookup against the region service.
type FetchError struct {
	Level  Level
	Parent string
	// Status is the HTTP status of a non-2xx answer, zero when the service
	// was not reached or sent an unreadable body.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("wilayah: fetch %s", e.Level)
	if e.Parent != "" {
		msg += " of " + e.Parent
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Kind() string {
	switch {
	case errors.Is(e.Err, context.DeadlineExceeded):
		return apperr.Timeout
	case errors.Is(e.Err, context.Canceled):
		return apperr.Canceled
	case e.Status != 0:
		return apperr.Upstream
	default:
		return apperr.Unavailable
	}
}

func checkRequest(level Level, parentCode string) error {
	if _, err := ParseLevel(string(level)); err != nil {
		return err
	}
	if level != LevelProvince && parentCode == "" {
		return fmt.Errorf("%w: %s needs a %s code", ErrParentRequired, level, level.Parent().Singular())
	}
	return nil
}
