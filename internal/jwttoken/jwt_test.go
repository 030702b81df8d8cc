package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("test-signing-key", "custodia", "custodia-api")
}

func TestControllerTokenRoundTrip(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateControllerToken("987654", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "987654", claims.ControllerID)
	assert.Empty(t, claims.SubjectID)
}

func TestSubjectTokenRoundTrip(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateSubjectToken("12345678901", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "12345678901", claims.SubjectID)
	assert.Empty(t, claims.ControllerID)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateControllerToken("987654", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestWrongKeyRejected(t *testing.T) {
	token, err := newTestService().GenerateControllerToken("987654", time.Hour)
	require.NoError(t, err)

	other := NewService("different-key", "custodia", "custodia-api")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := newTestService().ValidateToken("not.a.token")
	assert.Error(t, err)
}
