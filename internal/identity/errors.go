package identity

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	ErrUnknownRole       = errors.New("identity: unknown role")
	ErrNotPermitted      = errors.New("identity: not permitted")
	ErrInvalidTransition = errors.New("identity: invalid invitation transition")
	ErrInvitationExpired = errors.New("identity: invitation expired")
)

// FieldErrors maps a form field name to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := slices.Sorted(maps.Keys(fe))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Merge copies o into fe, keeping the first message per field.
func (fe FieldErrors) Merge(o FieldErrors) FieldErrors {
	if len(o) == 0 {
		return fe
	}
	if fe == nil {
		fe = FieldErrors{}
	}
	for k, v := range o {
		if _, ok := fe[k]; !ok {
			fe[k] = v
		}
	}
	return fe
}

// OrNil returns nil for an empty set so callers can `return fe.OrNil()`.
func (fe FieldErrors) OrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
