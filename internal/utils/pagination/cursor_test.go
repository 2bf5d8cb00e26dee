package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	token, err := Encode(Cursor{UserID: 7, UpdatedUnix: 1700000000123})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	c, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), c.UserID)
	assert.Equal(t, int64(1700000000123), c.UpdatedUnix)
}

func TestDecode_EmptyIsFirstPage(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode("%%%not-base64")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// valid base64, not JSON
	_, err = Decode("aGVsbG8=")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_PartialCursorRejected(t *testing.T) {
	for _, c := range []Cursor{{UserID: 7}, {UpdatedUnix: 1700000000123}} {
		token, err := Encode(c)
		require.NoError(t, err)
		_, err = Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
