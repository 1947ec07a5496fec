package business

import "errors"

var (
	// ErrClosed is returned by CheckOpen for a day without opening hours.
	ErrClosed = errors.New("business: closed on this day")
	// ErrOutsideHours is returned by CheckOpen for a time outside the day's
	// opening hours.
	ErrOutsideHours = errors.New("business: outside opening hours")
	// ErrInvalidData marks salon or FAQ data that cannot be used.
	ErrInvalidData = errors.New("business: invalid data")
)
