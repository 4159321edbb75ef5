package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tripnest/tripnest/pkg/travelsdk"
)

func TestFormError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"validation", travelsdk.NewValidationError(map[string]string{"email": "is required"}), http.StatusUnprocessableEntity, "email"},
		{"credentials", travelsdk.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{"duplicate email", travelsdk.ErrDuplicateEmail, http.StatusConflict, "email"},
		{"duplicate invite", travelsdk.ErrDuplicateInvite, http.StatusConflict, "email"},
		{"not found", travelsdk.ErrNotFound, http.StatusNotFound, ""},
		{"forbidden", travelsdk.ErrForbidden, http.StatusForbidden, ""},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, ""},
		{"transport", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Page{Errors: map[string]string{}}
			require.Equal(t, tt.status, formError(&p, tt.err))
			if tt.field != "" {
				require.NotEmpty(t, p.Errors[tt.field])
				return
			}
			require.NotEmpty(t, p.Error)
		})
	}
}

func TestNoticeTextIsNeverEmpty(t *testing.T) {
	require.Equal(t, "email already has a pending invitation", noticeText(travelsdk.ErrDuplicateInvite))
	require.Equal(t, msgUnavailable, noticeText(travelsdk.ErrRequestFailed))
}
