package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAccountService(nil, nil, "test-secret", 1)

	user := &models.User{
		ID:    uuid.New(),
		Email: "shopper@example.com",
		Role:  models.RoleCustomer,
	}

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sub, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sub.ID)
	assert.Equal(t, models.RoleCustomer, sub.Role)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAccountService(nil, nil, "secret-a", 1)
	verifier := NewAccountService(nil, nil, "secret-b", 1)

	user := &models.User{ID: uuid.New(), Email: "a@b.c", Role: models.RoleCustomer}

	token, err := issuer.GenerateToken(user)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAccountService(nil, nil, "test-secret", 1)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
