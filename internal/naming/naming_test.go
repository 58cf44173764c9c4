package naming

import (
	"os"
	"path/filepath"
	"testing"
	"unicode"
	"unicode/utf8"
)

func TestBaseName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"simple", "Hello world", "Hello_worl"},
		{"short", "Hi", "Hi"},
		{"punctuation dropped", "Hi, there! How are you?", "Hi_there_H"},
		{"leading space trimmed", "   spaced out text", "spaced"},
		{"trailing space trimmed", "abcd      xyz", "abcd"},
		{"newline becomes underscore", "one\ntwo", "one_two"},
		{"unicode letters kept", "Café au lait", "Café_au_la"},
		{"only symbols", "!!! ??? ...", FallbackBase},
		{"empty", "", FallbackBase},
		{"digits", "2024: year review", "2024_year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BaseName(tt.text); got != tt.want {
				t.Errorf("BaseName(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestBaseNameCharset(t *testing.T) {
	inputs := []string{
		"The quick brown fox jumps over the lazy dog",
		"tabs\tand\nnewlines\r\neverywhere",
		"path/../../etc/passwd",
		"emoji 🎉 party 🎈 time",
		"C:\\Windows\\System32",
		"日本語のテキストです。とても長い",
	}

	for _, in := range inputs {
		got := BaseName(in)
		if n := utf8.RuneCountInString(got); n > MaxBaseLen {
			t.Errorf("BaseName(%q) = %q has %d runes, want <= %d", in, got, n, MaxBaseLen)
		}
		for _, r := range got {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				t.Errorf("BaseName(%q) = %q contains %q", in, got, r)
			}
		}
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()

	first, err := UniquePath(dir, "hello", ".wav")
	if err != nil {
		t.Fatalf("UniquePath: %v", err)
	}
	if want := filepath.Join(dir, "hello.wav"); first != want {
		t.Fatalf("first path = %q, want %q", first, want)
	}

	for i, want := range []string{"hello_1.wav", "hello_2.wav", "hello_3.wav"} {
		if err := os.WriteFile(first, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := UniquePath(dir, "hello", ".wav")
		if err != nil {
			t.Fatalf("UniquePath #%d: %v", i, err)
		}
		if got != filepath.Join(dir, want) {
			t.Fatalf("UniquePath #%d = %q, want %q", i, got, want)
		}
		first = got
	}
}

func TestUniquePathSkipsGaps(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.wav", "a_1.wav", "a_3.wav"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := UniquePath(dir, "a", ".wav")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "a_2.wav"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRecordingPathSkipsProcessed(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"empty dir", nil, "Hello.wav"},
		{"processed only", []string{"processed_Hello.wav"}, "Hello_1.wav"},
		{"recording only", []string{"Hello.wav"}, "Hello_1.wav"},
		{
			"mixed",
			[]string{"processed_Hello.wav", "Hello_1.wav", "processed_Hello_2.wav"},
			"Hello_3.wav",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.existing {
				if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
					t.Fatal(err)
				}
			}
			got, err := RecordingPath(dir, "Hello")
			if err != nil {
				t.Fatal(err)
			}
			if want := filepath.Join(dir, tt.want); got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestProcessedPath(t *testing.T) {
	got := ProcessedPath(filepath.Join("data", "temp", "Hello_worl_2.wav"))
	want := filepath.Join("data", "temp", "processed_Hello_worl_2.wav")
	if got != want {
		t.Errorf("ProcessedPath = %q, want %q", got, want)
	}
}

func TestSegmentPath(t *testing.T) {
	got := SegmentPath("tmp", "abcd1234", 7)
	if want := filepath.Join("tmp", "seg_abcd1234_007.wav"); got != want {
		t.Errorf("SegmentPath = %q, want %q", got, want)
	}
}
