package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad %s", "input"), http.StatusBadRequest},
		{Precondition("insufficient space"), http.StatusBadRequest},
		{NotFound("quote"), http.StatusNotFound},
		{Forbidden("nope"), http.StatusForbidden},
		{ForbiddenAdminRole(), http.StatusForbidden},
		{Unexpected("db down", errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestWrappedKindSurvives(t *testing.T) {
	err := fmt.Errorf("failed to confirm booking: %w", Precondition("booking is %s", "active"))
	assert.True(t, errors.Is(err, ErrPrecondition))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindPrecondition, KindOf(err))
}

func TestForbiddenAdminRoleCode(t *testing.T) {
	err := ForbiddenAdminRole()
	assert.Equal(t, CodeForbiddenAdminRole, CodeOf(err))
	assert.True(t, errors.Is(err, ErrAuthorization))
	assert.True(t, errors.Is(err, &Error{Kind: KindAuthorization, Code: CodeForbiddenAdminRole}))
	assert.False(t, errors.Is(Forbidden("x"), &Error{Kind: KindAuthorization, Code: CodeForbiddenAdminRole}))
}

func TestUnexpectedUnwraps(t *testing.T) {
	root := errors.New("connection refused")
	err := Unexpected("failed to load quote", root)
	assert.ErrorIs(t, err, root)
	assert.Contains(t, err.Error(), "connection refused")
}
