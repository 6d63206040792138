package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsComparesCode(t *testing.T) {
	err := fmt.Errorf("load: %w", ErrStoryNotFound.WithDetail("slug dune"))
	assert.True(t, stderrors.Is(err, ErrStoryNotFound))
	assert.False(t, stderrors.Is(err, ErrChapterNotFound))
}

func TestAppError_CopiesDoNotMutate(t *testing.T) {
	cause := stderrors.New("upstream down")
	e := ErrCoverFailed.WithDetail("imagen").WithError(cause)

	assert.Empty(t, ErrCoverFailed.Detail)
	assert.Nil(t, ErrCoverFailed.Err)
	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "upstream down")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[*AppError]int{
		InvalidParam("x"):         http.StatusBadRequest,
		ErrTokenExpired:           http.StatusUnauthorized,
		ErrForbidden:              http.StatusForbidden,
		ErrDraftNotFound:          http.StatusNotFound,
		ErrDraftConflict:          http.StatusConflict,
		ErrSlugConflict:           http.StatusConflict,
		ErrEmailAlreadyRegistered: http.StatusConflict,
		ErrNarrationDisabled:      http.StatusConflict,
		ErrNarrationFailed:        http.StatusBadGateway,
		ErrInternalError:          http.StatusInternalServerError,
	}
	for e, want := range cases {
		assert.Equal(t, want, e.HTTPStatus, e.Message)
	}
}
