package policy

import "fmt"

// ConfigError signals a malformed policy: an unknown named rule, a
// cyclic reference, or an unparseable pattern. It is fatal to the
// evaluation and must never be mapped to a false decision.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("policy config error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("policy config error: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErrorf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

func wrapConfigError(msg string, err error) error {
	return &ConfigError{Msg: msg, Err: err}
}

// FetchError signals that a roster lookup (organization or team
// membership) failed. It is fatal to the evaluation so the caller can
// retry; it is never treated as non-membership.
type FetchError struct {
	Msg string
	Err error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("roster fetch error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("roster fetch error: %s", e.Msg)
}

func (e *FetchError) Unwrap() error { return e.Err }

func wrapFetchError(msg string, err error) error {
	return &FetchError{Msg: msg, Err: err}
}
