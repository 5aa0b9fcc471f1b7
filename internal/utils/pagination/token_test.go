package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeMovementToken(t *testing.T) {
	createdAt := time.Date(2024, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeMovementToken(createdAt, 42)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedCreatedAt, decodedSeq, err := DecodeMovementToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.True(t, createdAt.Equal(decodedCreatedAt), "Created at should match after decode")
	assert.Equal(t, int64(42), decodedSeq, "Seq should match after decode")

	// Zero time round trip
	zeroToken := EncodeMovementToken(time.Time{}, 0)
	decodedZero, decodedZeroSeq, err := DecodeMovementToken(zeroToken)
	assert.NoError(t, err)
	assert.True(t, time.Time{}.Equal(decodedZero))
	assert.Equal(t, int64(0), decodedZeroSeq)
}

func TestDecodeMovementTokenError(t *testing.T) {
	// Invalid base64
	_, _, err := DecodeMovementToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	// Missing separator
	_, _, err = DecodeMovementToken("MjAyMy0wNS0xNVQwMDowMDowMFo=")
	assert.Error(t, err, "Should return an error for a token without separator")
	assert.Contains(t, err.Error(), "split")

	// Bad timestamp
	// "notadate|7" base64 encoded
	_, _, err = DecodeMovementToken("bm90YWRhdGV8Nw==")
	assert.Error(t, err, "Should return an error for an unparseable timestamp")
	assert.Contains(t, err.Error(), "created_at parse")

	// Bad sequence
	// "2023-05-15T14:30:45.123456789Z|xyz" base64 encoded
	_, _, err = DecodeMovementToken("MjAyMy0wNS0xNVQxNDozMDo0NS4xMjM0NTY3ODlafHh5eg==")
	assert.Error(t, err, "Should return an error for an unparseable sequence")
	assert.Contains(t, err.Error(), "seq parse")
}
