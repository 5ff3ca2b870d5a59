package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainError_CodesAndStatuses(t *testing.T) {
	cases := []struct {
		err        error
		wantCode   string
		wantStatus int
	}{
		{NewInvalidCredentials(), CodeInvalidCredentials, http.StatusUnauthorized},
		{NewDuplicateUsername("john"), CodeDuplicateUsername, http.StatusConflict},
		{NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{NewNotFound("project", nil), CodeNotFound, http.StatusNotFound},
		{NewInvalidTransition("no", nil), CodeInvalidTransition, http.StatusConflict},
		{NewActivationFailed("no", nil), CodeActivationFailed, http.StatusConflict},
		{NewValidationError("no", nil), CodeValidationFailed, http.StatusBadRequest},
		{NewUnauthorized("no"), CodeUnauthorized, http.StatusUnauthorized},
		{NewInternalError(nil), CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		if de.Code != tc.wantCode {
			t.Errorf("code = %s, want %s", de.Code, tc.wantCode)
		}
		if de.HTTPStatus != tc.wantStatus {
			t.Errorf("%s: status = %d, want %d", tc.wantCode, de.HTTPStatus, tc.wantStatus)
		}
	}
}

func TestToDomainError_WrapsUnknownErrors(t *testing.T) {
	de := ToDomainError(errors.New("disk on fire"))
	if de.Code != CodeInternal {
		t.Errorf("code = %s, want %s", de.Code, CodeInternal)
	}
	if de.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", de.HTTPStatus)
	}
}

func TestHasCode_SeesThroughWrapping(t *testing.T) {
	inner := NewDuplicateUsername("john")
	wrapped := fmt.Errorf("activation: %w", inner)
	if !HasCode(wrapped, CodeDuplicateUsername) {
		t.Error("wrapped code not detected")
	}
	if HasCode(wrapped, CodeNotFound) {
		t.Error("wrong code matched")
	}
	if HasCode(nil, CodeNotFound) {
		t.Error("nil error matched")
	}
}
