package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
		msg  string
	}{
		{"record not found", fmt.Errorf("find user: %w", gorm.ErrRecordNotFound), codes.NotFound, "record not found"},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded, "request timed out"},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), codes.Canceled, "request was canceled"},
		{"storage failure", errors.New("connection refused"), codes.Internal, "internal error"},
		{"status passes through", PermissionDenied("not a party"), codes.PermissionDenied, "not a party"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(Map(tt.err))
			assert.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.msg, st.Message())
		})
	}

	assert.NoError(t, Map(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidArgument("bad")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Unauthenticated("no token")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(PermissionDenied("nope")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("missing")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(AlreadyExists("dup")))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(context.DeadlineExceeded))
	assert.Equal(t, StatusClientClosedRequest, HTTPStatus(context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestMessage_HidesInternalCause(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("dial tcp 10.0.0.1:3306: refused")))
	assert.Equal(t, "user not found", Message(NotFound("user not found")))
	assert.Empty(t, Message(nil))
}
