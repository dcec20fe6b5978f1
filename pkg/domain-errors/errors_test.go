package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	err := New(CodeNotFound, "case acme.loan-7 doesn't exist")
	assert.Equal(t, CodeNotFound, CodeOf(err))

	wrapped := fmt.Errorf("load case: %w", err)
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))

	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeInternal, "store unavailable", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:          http.StatusNotFound,
		CodeConflict:          http.StatusConflict,
		CodeBadRequest:        http.StatusBadRequest,
		CodeIllegalTransition: http.StatusBadRequest,
		CodeDispatchRejected:  http.StatusBadRequest,
		CodeInvalidState:      http.StatusInternalServerError,
		CodeInternal:          http.StatusInternalServerError,
		Code("unknown"):       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
