package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID("user_id", "42")
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, raw := range []string{"", "abc", "-1", "0", "1.5"} {
		_, err := ParseUserID("user_id", raw)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), raw)
	}
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "7", FormatID(7))
}
