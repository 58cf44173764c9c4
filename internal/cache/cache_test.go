package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/dgnsrekt/paste2audio/internal/synth/engines"
	"github.com/go-audio/audio"
)

func TestMemoryLRU(t *testing.T) {
	c := NewMemory(10)

	_ = c.Put("a", []byte("aaaa"))
	_ = c.Put("b", []byte("bbbb"))
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	// a is now most recent; c evicts b
	_ = c.Put("c", []byte("cccc"))

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive")
	}

	s := c.Stats()
	if s.Items != 2 || s.Size != 8 || s.Evictions != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("hits/misses = %d/%d", s.Hits, s.Misses)
	}
}

func TestMemoryTooLarge(t *testing.T) {
	c := NewMemory(3)
	if err := c.Put("k", []byte("four")); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("err = %v, want ErrItemTooLarge", err)
	}
}

func TestMemoryReplaceAndDelete(t *testing.T) {
	c := NewMemory(100)
	_ = c.Put("k", []byte("12345"))
	_ = c.Put("k", []byte("12"))
	if s := c.Stats(); s.Size != 2 || s.Items != 1 {
		t.Errorf("stats after replace = %+v", s)
	}
	c.Delete("k")
	c.Delete("missing")
	if s := c.Stats(); s.Size != 0 || s.Items != 0 {
		t.Errorf("stats after delete = %+v", s)
	}
	_ = c.Put("x", []byte("1"))
	c.Clear()
	if _, ok := c.Get("x"); ok {
		t.Error("Clear left items behind")
	}
}

type countingEngine struct {
	*engines.Mock
	calls int
}

func (c *countingEngine) Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error) {
	c.calls++
	return c.Mock.Synthesize(ctx, text)
}

func TestEngineCachesChunks(t *testing.T) {
	inner := &countingEngine{Mock: engines.NewMock(engines.MockConfig{})}
	e := Wrap(inner, NewMemory(1<<20), "bf_emma")

	first, err := e.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("engine calls = %d, want 1", inner.calls)
	}
	if len(first.Data) != len(second.Data) || *first.Format != *second.Format {
		t.Error("cached buffer differs from original")
	}
	for i := range first.Data {
		if first.Data[i] != second.Data[i] {
			t.Fatalf("sample %d differs", i)
		}
	}

	if _, err := e.Synthesize(context.Background(), "other"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("engine calls = %d, want 2", inner.calls)
	}
	if e.Name() != engines.NameMock {
		t.Errorf("Name() = %s", e.Name())
	}
}

func TestKeyScope(t *testing.T) {
	if Key("kokoro", "bf_emma", "hi") == Key("kokoro", "af_bella", "hi") {
		t.Error("scope not part of key")
	}
	if Key("kokoro", "a", "bc") == Key("kokoro", "ab", "c") {
		t.Error("key fields not separated")
	}
}
