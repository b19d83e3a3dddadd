package authgin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auth0/auth0-client-go/core"
	"github.com/auth0/auth0-client-go/validator"
)

const validToken = "valid-token"

func stubValidate(_ context.Context, token string) (any, error) {
	if token != validToken {
		return nil, core.NewError(core.KindInvalidSignature, core.CodeSignatureMismatch, "signature mismatch", nil)
	}
	return &validator.DecodedToken{Claims: validator.RegisteredClaims{Subject: "user-123"}}, nil
}

func newRouter(t *testing.T, opts ...Option) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	middleware, err := New(stubValidate, opts...)
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware)
	router.GET("/", func(c *gin.Context) {
		decoded, err := GetClaims(c, "")
		if err != nil {
			c.String(http.StatusTeapot, err.Error())
			return
		}
		c.String(http.StatusOK, decoded.Claims.Subject)
	})
	return router
}

func TestGinMiddleware(t *testing.T) {
	t.Run("it propagates the claims on a valid token", func(t *testing.T) {
		router := newRouter(t)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+validToken)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "user-123", recorder.Body.String())
	})

	t.Run("it rejects an invalid token with a 401", func(t *testing.T) {
		router := newRouter(t)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer forged")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("it rejects a missing token with a 400", func(t *testing.T) {
		router := newRouter(t)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("it calls a custom error handler", func(t *testing.T) {
		var seen error
		router := newRouter(t, WithErrorHandler(func(c *gin.Context, err error) {
			seen = err
			c.AbortWithStatus(http.StatusForbidden)
		}))

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer forged")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Error(t, seen)
	})

	t.Run("it stores the claims under a custom context key", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		middleware, err := New(stubValidate, WithContextKey("claims"))
		require.NoError(t, err)

		router := gin.New()
		router.Use(middleware)
		router.GET("/", func(c *gin.Context) {
			decoded, err := GetClaims(c, "claims")
			require.NoError(t, err)
			c.String(http.StatusOK, decoded.Claims.Subject)
		})

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+validToken)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestGinGetClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("it reports missing claims", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		_, err := GetClaims(c, "")
		assert.ErrorIs(t, err, ErrMissingClaims)
	})

	t.Run("it rejects a foreign value under the claims key", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(DefaultClaimsKey, "not a decoded token")

		_, err := GetClaims(c, "")
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}
