package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeList_BareArray(t *testing.T) {
	users, err := decodeList[User]([]byte(`[{"email":"alice@example.com","session_count":3}]`), "users")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].Email)
	assert.Equal(t, 3, users[0].SessionCount)
}

func TestDecodeList_ResultsEnvelope(t *testing.T) {
	users, err := decodeList[User]([]byte(`{"results":[{"email":"bob@example.com"}]}`), "users")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob@example.com", users[0].Email)
}

func TestDecodeList_DataEnvelope(t *testing.T) {
	users, err := decodeList[User]([]byte(`{"data":[{"email":"bob@example.com"}]}`), "users")
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestDecodeList_ResourceKey(t *testing.T) {
	sessions, err := decodeList[Session]([]byte(`{"interviews":[{"id":"session-alice-1","email":"alice@example.com"}]}`), "interviews")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "session-alice-1", sessions[0].ID)
}

// results wins over data and resource keys when several shapes appear
// at once. The precedence order is part of the contract.
func TestDecodeList_Precedence(t *testing.T) {
	payload := []byte(`{
		"results": [{"email":"from-results@example.com"}],
		"data": [{"email":"from-data@example.com"}],
		"users": [{"email":"from-users@example.com"}]
	}`)
	users, err := decodeList[User](payload, "users")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "from-results@example.com", users[0].Email)
}

// A key in the right position but the wrong type falls through to the
// next recognized shape instead of failing.
func TestDecodeList_NonArrayKeySkipped(t *testing.T) {
	payload := []byte(`{"results": "oops", "data": [{"email":"a@example.com"}]}`)
	users, err := decodeList[User](payload, "users")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@example.com", users[0].Email)
}

func TestDecodeList_UnrecognizedShapeDegradesToEmpty(t *testing.T) {
	users, err := decodeList[User]([]byte(`{"count": 3, "page": 1}`), "users")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDecodeList_EmptyBody(t *testing.T) {
	users, err := decodeList[User](nil, "users")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDecodeList_MalformedJSON(t *testing.T) {
	_, err := decodeList[User]([]byte(`{"results": [`), "users")
	assert.Error(t, err)

	_, err = decodeList[User]([]byte(`not json`), "users")
	assert.Error(t, err)
}
