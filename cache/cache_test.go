package cache

import (
	"testing"
	"time"

	"github.com/AmanSainju12/pagecapture/models"
)

func TestKeyDistinguishesParameters(t *testing.T) {
	base := Key("https://example.com", true, 1366, 900, "png")

	variants := []string{
		Key("https://example.org", true, 1366, 900, "png"),
		Key("https://example.com", false, 1366, 900, "png"),
		Key("https://example.com", true, 1920, 900, "png"),
		Key("https://example.com", true, 1366, 1080, "png"),
		Key("https://example.com", true, 1366, 900, "jpeg"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d produced the same key as the base request", i)
		}
	}

	if again := Key("https://example.com", true, 1366, 900, "png"); again != base {
		t.Error("identical parameters should produce identical keys")
	}
}

func TestGetRespectsMaxAge(t *testing.T) {
	c := New(10)
	key := Key("https://example.com", true, 1366, 900, "png")
	c.Set(key, &models.ScreenshotResponse{Success: true, Strategy: "tiled"})

	if _, hit := c.Get(key, 60_000); !hit {
		t.Error("expected cache hit within max age")
	}
	if _, hit := c.Get(key, 0); hit {
		t.Error("maxAge 0 must disable cache lookup")
	}
	if _, hit := c.Get("missing", 60_000); hit {
		t.Error("unknown key must miss")
	}
}

func TestGetExpiredEntryMisses(t *testing.T) {
	c := New(10)
	key := "k"
	c.mu.Lock()
	c.store[key] = &entry{
		response:  &models.ScreenshotResponse{Success: true},
		createdAt: time.Now().Add(-10 * time.Second),
	}
	c.mu.Unlock()

	if _, hit := c.Get(key, 5_000); hit {
		t.Error("entry older than max age must miss")
	}
	if _, hit := c.Get(key, 60_000); !hit {
		t.Error("entry younger than a larger max age must hit")
	}
}

func TestSetEvictsAtCapacity(t *testing.T) {
	c := New(3)
	for _, k := range []string{"a", "b", "c", "d"} {
		c.Set(k, &models.ScreenshotResponse{Success: true})
	}

	c.mu.RLock()
	size := len(c.store)
	c.mu.RUnlock()
	if size > 3 {
		t.Errorf("store grew beyond capacity: %d entries", size)
	}
}
