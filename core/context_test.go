package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClaims struct {
	Subject string
}

func TestClaimsContext(t *testing.T) {
	t.Run("round trips claims through the context", func(t *testing.T) {
		ctx := SetClaims(context.Background(), &testClaims{Subject: "user|123"})

		require.True(t, HasClaims(ctx))

		claims, err := GetClaims[*testClaims](ctx)
		require.NoError(t, err)
		assert.Equal(t, "user|123", claims.Subject)
	})

	t.Run("returns ErrClaimsNotFound on an empty context", func(t *testing.T) {
		assert.False(t, HasClaims(context.Background()))

		_, err := GetClaims[*testClaims](context.Background())
		assert.ErrorIs(t, err, ErrClaimsNotFound)
	})

	t.Run("fails when the stored type does not match", func(t *testing.T) {
		ctx := SetClaims(context.Background(), "not a claims struct")

		_, err := GetClaims[*testClaims](ctx)
		assert.EqualError(t, err, "claims type assertion failed")
	})
}
