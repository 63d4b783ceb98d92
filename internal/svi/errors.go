// Package svi implements the social vulnerability index core: variable table
// construction, missing-value completion, and the two scoring estimators.
package svi

import "github.com/rotisserie/eris"

// Error classes. Configuration errors are rejected before computation,
// data-availability and numerical errors abort a run; none are silently
// substituted with defaults.
var (
	ErrConfiguration    = eris.New("svi: configuration error")
	ErrDataAvailability = eris.New("svi: data availability error")
	ErrNumerical        = eris.New("svi: numerical error")
)

func configErrorf(format string, args ...any) error {
	return eris.Wrapf(ErrConfiguration, format, args...)
}

func dataErrorf(format string, args ...any) error {
	return eris.Wrapf(ErrDataAvailability, format, args...)
}

func numericalErrorf(format string, args ...any) error {
	return eris.Wrapf(ErrNumerical, format, args...)
}
