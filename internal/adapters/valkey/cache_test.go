package valkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"civicmap:", "geocode:temple", "civicmap:geocode:temple"},
		{"civicmap", "geocode:temple", "civicmap:geocode:temple"},
		{"", "geocode:temple", "geocode:temple"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Key(tt.prefix, tt.key))
	}
}

func TestCacheKeyUsesPrefix(t *testing.T) {
	c := &Cache{prefix: "staging"}
	assert.Equal(t, "staging:geocode:x", c.Key("geocode:x"))
}
