package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://shop.example.com", "https://shop.example.com"},
		{"https://shop.example.com/", "https://shop.example.com"},
		{"http://shop.example.com/wp/", "http://shop.example.com/wp"},
	}
	for _, tc := range cases {
		got, err := NormalizeBaseURL(tc.in)
		require.Nil(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestNormalizeBaseURL_Rejects(t *testing.T) {
	for _, in := range []string{"", "shop.example.com", "ftp://shop.example.com", "https://"} {
		_, err := NormalizeBaseURL(in)
		require.NotNil(t, err, in)
		assert.Equal(t, KindInvalidInput, err.Kind)
	}
}

func TestErrorTerminal(t *testing.T) {
	assert.True(t, (&Error{Kind: KindInvalidCredentials}).Terminal())
	assert.True(t, (&Error{Kind: KindInsufficientPermissions}).Terminal())
	assert.True(t, (&Error{Kind: KindInvalidInput}).Terminal())
	assert.False(t, (&Error{Kind: KindTransientNetworkError}).Terminal())
	assert.False(t, (&Error{Kind: KindAPINotFound}).Terminal())
}
