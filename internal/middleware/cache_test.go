package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{
		"Content-Type": []string{"application/json"},
		"X-Total":      []string{"3"},
	}
	body := []byte(`{"items":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, body, gotBody)
}

func TestDecodePayload_Garbage(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, make([]byte, 8)} {
		_, _, _, ok := decodePayload(bs)
		if len(bs) == 8 {
			// empty header and body is technically valid
			assert.True(t, ok)
			continue
		}
		assert.False(t, ok)
	}
	// header length pointing past the buffer
	bad, err := encodePayload(http.StatusOK, http.Header{"A": []string{"b"}}, nil)
	require.NoError(t, err)
	_, _, _, ok := decodePayload(bad[:10])
	assert.False(t, ok)
}
