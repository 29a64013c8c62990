package auth

import (
	"boostlend/handler/request"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = common.HexToAddress("0x4001")

func TestSignLogin(t *testing.T) {
	a := New("secret", "boostlend")

	token, err := a.Sign(alice, time.Hour)
	require.NoError(t, err)

	user, err := a.Login(token)
	require.NoError(t, err)
	assert.Equal(t, alice, user)

	_, err = New("other", "boostlend").Login(token)
	assert.Error(t, err)

	_, err = New("secret", "someone-else").Login(token)
	assert.Error(t, err)

	expired, err := a.Sign(alice, -time.Hour)
	require.NoError(t, err)
	_, err = a.Login(expired)
	assert.Error(t, err)

	_, err = New("", "").Sign(alice, time.Hour)
	assert.Equal(t, ErrNoSecret, err)
}

func TestLoginRejectsBadSubject(t *testing.T) {
	a := New("secret", "")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = a.Login(token)
	assert.Equal(t, ErrInvalidSubject, err)
}

func TestHandleAuthentication(t *testing.T) {
	a := New("secret", "")
	token, err := a.Sign(alice, time.Hour)
	require.NoError(t, err)

	var (
		got    common.Address
		authed bool
	)
	h := HandleAuthentication(a)(LoginRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, authed = request.NewContext(r.Context()).GetUser()
	})))

	r := httptest.NewRequest(http.MethodPost, "/repay", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, authed)
	assert.Equal(t, alice, got)

	for _, header := range []string{"", "Bearer", "Bearer broken", "Basic " + token} {
		authed = false
		r := httptest.NewRequest(http.MethodPost, "/repay", nil)
		r.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.False(t, authed, header)
	}
}
