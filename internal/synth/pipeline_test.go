package synth

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/go-audio/audio"
)

type fakeEngine struct {
	calls  []string
	failAt int
	empty  bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Validate(context.Context) error { return nil }

func (f *fakeEngine) Synthesize(_ context.Context, text string) (*audio.IntBuffer, error) {
	f.calls = append(f.calls, text)
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return nil, errors.New("engine exploded")
	}
	if f.empty {
		return &audio.IntBuffer{Format: &audio.Format{NumChannels: 1, SampleRate: 24000}}, nil
	}
	return &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: 24000},
		Data:   make([]int, len(text)*10),
	}, nil
}

func TestChunks(t *testing.T) {
	p, err := NewPipeline(&fakeEngine{}, "")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single line", "hello there", []string{"hello there"}},
		{"newline runs", "one\n\n\ntwo\nthree", []string{"one", "two", "three"}},
		{"blank lines dropped", "\n  \nalpha\n   \n", []string{"alpha"}},
		{"crlf", "a\r\nb", []string{"a", "b"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Chunks(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Chunks(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestCustomSplitPattern(t *testing.T) {
	p, err := NewPipeline(&fakeEngine{}, `[.!?]\s+`)
	if err != nil {
		t.Fatal(err)
	}
	got := p.Chunks("First. Second! Third")
	want := []string{"First", "Second", "Third"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunks = %q, want %q", got, want)
	}
}

func TestInvalidSplitPattern(t *testing.T) {
	if _, err := NewPipeline(&fakeEngine{}, "(unclosed"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestGenerateOrder(t *testing.T) {
	eng := &fakeEngine{}
	p, _ := NewPipeline(eng, "")

	var got []Segment
	err := p.Generate(context.Background(), "a\nbb\nccc", func(s Segment) error {
		got = append(got, s)
		return nil
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d segments, want 3", len(got))
	}
	for i, s := range got {
		if s.Index != i {
			t.Errorf("segment %d has index %d", i, s.Index)
		}
		if len(s.Audio.Data) != len(s.Text)*10 {
			t.Errorf("segment %d has %d samples", i, len(s.Audio.Data))
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		p, _ := NewPipeline(&fakeEngine{}, "")
		err := p.Generate(context.Background(), " \n\n ", func(Segment) error { return nil })
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("err = %v, want ErrEmptyText", err)
		}
	})

	t.Run("engine failure stops", func(t *testing.T) {
		eng := &fakeEngine{failAt: 2}
		p, _ := NewPipeline(eng, "")
		n := 0
		err := p.Generate(context.Background(), "a\nb\nc", func(Segment) error { n++; return nil })
		if err == nil {
			t.Fatal("expected error")
		}
		if n != 1 || len(eng.calls) != 2 {
			t.Errorf("yielded %d, engine calls %d", n, len(eng.calls))
		}
	})

	t.Run("empty audio", func(t *testing.T) {
		p, _ := NewPipeline(&fakeEngine{empty: true}, "")
		err := p.Generate(context.Background(), "a", func(Segment) error { return nil })
		if !errors.Is(err, ErrNoAudio) {
			t.Errorf("err = %v, want ErrNoAudio", err)
		}
	})

	t.Run("yield error", func(t *testing.T) {
		p, _ := NewPipeline(&fakeEngine{}, "")
		stop := errors.New("stop")
		err := p.Generate(context.Background(), "a\nb", func(Segment) error { return stop })
		if !errors.Is(err, stop) {
			t.Errorf("err = %v, want stop", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		eng := &fakeEngine{}
		p, _ := NewPipeline(eng, "")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := p.Generate(ctx, "a\nb", func(Segment) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if len(eng.calls) != 0 {
			t.Errorf("engine called %d times after cancel", len(eng.calls))
		}
	})
}
