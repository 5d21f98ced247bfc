package monitoring

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrorPolicy decides what a per-site loop does with one site's failure.
// Returning nil moves on to the next site; returning an error aborts the
// whole call with it.
type ErrorPolicy func(siteID string, err error) error

// StopOnError aborts on the first failing site.
func StopOnError() ErrorPolicy {
	return func(siteID string, err error) error {
		return fmt.Errorf("site %s: %w", siteID, err)
	}
}

// LogAndContinue logs each failure as a warning and moves on.
func LogAndContinue(logger *logrus.Logger) ErrorPolicy {
	return func(siteID string, err error) error {
		logger.WithFields(logrus.Fields{
			"site_id": siteID,
		}).WithError(err).Warn("Skipping site")
		return nil
	}
}

// Suppress ignores failures.
func Suppress() ErrorPolicy {
	return func(string, error) error { return nil }
}

// SiteError is one failure recorded by Collect.
type SiteError struct {
	SiteID string
	Err    error
}

func (e SiteError) Error() string {
	return fmt.Sprintf("site %s: %v", e.SiteID, e.Err)
}

func (e SiteError) Unwrap() error { return e.Err }

// Collect appends each failure to failures and moves on.
func Collect(failures *[]SiteError) ErrorPolicy {
	return func(siteID string, err error) error {
		*failures = append(*failures, SiteError{SiteID: siteID, Err: err})
		return nil
	}
}

// PolicyByName maps the configuration spellings stop, continue and silent to
// a policy.
func PolicyByName(name string, logger *logrus.Logger) (ErrorPolicy, error) {
	switch name {
	case "", "stop":
		return StopOnError(), nil
	case "continue":
		return LogAndContinue(logger), nil
	case "silent":
		return Suppress(), nil
	default:
		return nil, fmt.Errorf("unknown error policy %q (valid: stop, continue, silent)", name)
	}
}
