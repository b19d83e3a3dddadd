package auth0client

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHeaderTokenExtractor(t *testing.T) {
	testCases := []struct {
		name          string
		header        string
		expectedToken string
		expectedErr   string
	}{
		{
			name: "it returns nothing when the header is absent",
		},
		{
			name:          "it extracts the token from a bearer header",
			header:        "Bearer token",
			expectedToken: "token",
		},
		{
			name:          "it accepts a lowercase scheme",
			header:        "bearer token",
			expectedToken: "token",
		},
		{
			name:        "it rejects a non-bearer scheme",
			header:      "Basic dXNlcjpwYXNz",
			expectedErr: "Authorization header format must be Bearer {token}",
		},
		{
			name:        "it rejects a header without a token",
			header:      "Bearer",
			expectedErr: "Authorization header format must be Bearer {token}",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
			require.NoError(t, err)
			if testCase.header != "" {
				request.Header.Set("Authorization", testCase.header)
			}

			token, err := AuthHeaderTokenExtractor(request)
			if testCase.expectedErr != "" {
				assert.EqualError(t, err, testCase.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedToken, token)
		})
	}
}

func TestCookieTokenExtractor(t *testing.T) {
	t.Run("it returns nothing when the cookie is absent", func(t *testing.T) {
		request, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
		require.NoError(t, err)

		token, err := CookieTokenExtractor("token")(request)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("it extracts the token from the named cookie", func(t *testing.T) {
		request, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
		require.NoError(t, err)
		request.AddCookie(&http.Cookie{Name: "token", Value: "value"})

		token, err := CookieTokenExtractor("token")(request)
		require.NoError(t, err)
		assert.Equal(t, "value", token)
	})
}

func TestParameterTokenExtractor(t *testing.T) {
	request, err := http.NewRequest(http.MethodGet, "https://example.com?token=value", nil)
	require.NoError(t, err)

	token, err := ParameterTokenExtractor("token")(request)
	require.NoError(t, err)
	assert.Equal(t, "value", token)
}

func TestMultiTokenExtractor(t *testing.T) {
	empty := func(r *http.Request) (string, error) { return "", nil }
	value := func(r *http.Request) (string, error) { return "value", nil }
	failure := func(r *http.Request) (string, error) { return "", errors.New("extraction failed") }

	request := &http.Request{URL: &url.URL{}}

	t.Run("it uses the first extractor that yields a token", func(t *testing.T) {
		token, err := MultiTokenExtractor(empty, value, failure)(request)
		require.NoError(t, err)
		assert.Equal(t, "value", token)
	})

	t.Run("it stops on the first extractor error", func(t *testing.T) {
		_, err := MultiTokenExtractor(empty, failure, value)(request)
		assert.EqualError(t, err, "extraction failed")
	})

	t.Run("it yields nothing when no extractor finds a token", func(t *testing.T) {
		token, err := MultiTokenExtractor(empty, empty)(request)
		require.NoError(t, err)
		assert.Empty(t, token)
	})
}
