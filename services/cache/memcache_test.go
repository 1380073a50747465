package cache

import (
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
)

func TestBlockKey(t *testing.T) {
	assert.Equal(t, "block:doisporum.net", BlockKey("doisporum.net"))
}

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	_, err := mc.client.Get("probe")
	if err != nil && err != memcache.ErrCacheMiss {
		t.Skip("Memcached is not available, skipping test")
	}

	key := BlockKey("test-host")

	err = mc.Set(key, []byte("60"), 1*time.Second)
	assert.NoError(t, err)

	value, err := mc.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, "60", string(value))

	err = mc.Delete(key)
	assert.NoError(t, err)

	_, err = mc.Get(key)
	assert.Error(t, err)
}
