package objcache

import "testing"

func TestCachePutGet(t *testing.T) {
	c := New()
	var key Key
	key[0] = 0xab

	if _, ok := c.Get(key); ok {
		t.Fatalf("expected miss on empty cache")
	}

	c.Put(key, Entry{Kind: "blob", Data: []byte("hello\n")})

	got, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected hit after Put")
	}
	if got.Kind != "blob" || string(got.Data) != "hello\n" {
		t.Errorf("Get() = %+v, want blob/hello", got)
	}

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheDistributesAcrossShards(t *testing.T) {
	c := New()
	for i := 0; i < 256; i++ {
		var key Key
		key[0] = byte(i)
		c.Put(key, Entry{Kind: "blob", Data: []byte{byte(i)}})
	}
	if c.Len() != 256 {
		t.Errorf("Len() = %d, want 256", c.Len())
	}
}
