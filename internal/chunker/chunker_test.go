package chunker

import (
	"errors"
	"strings"
	"testing"
)

func TestNewRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.size, tc.overlap); !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("New(%d, %d) err = %v, want ErrInvalidConfiguration", tc.size, tc.overlap, err)
			}
		})
	}
}

func TestSplitEmptyText(t *testing.T) {
	c, err := New(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := c.Split("")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %v", chunks)
	}
}

func TestSplitKnownSequences(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
		text    string
		want    []string
	}{
		{"even step", 4, 1, "ABCDEFGHIJ", []string{"ABCD", "DEFG", "GHIJ"}},
		{"folded tail", 4, 2, "ABCDEFG", []string{"ABCD", "CDEFG"}},
		{"fits one chunk", 10, 3, "ABCDE", []string{"ABCDE"}},
		{"exact boundary", 3, 1, "ABC", []string{"ABC"}},
		{"short remainder", 4, 1, "ABCDE", []string{"ABCD", "DE"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.size, tc.overlap)
			if err != nil {
				t.Fatal(err)
			}
			got, err := c.Split(tc.text)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("chunk count = %d, want %d (%v)", len(got), len(tc.want), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("chunk[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestSplitOverlapAndSizeEnvelope(t *testing.T) {
	const size, overlap = 50, 10
	c, err := New(size, overlap)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)
	chunks, err := c.Split(text)
	if err != nil {
		t.Fatal(err)
	}

	for i, chunk := range chunks {
		runes := []rune(chunk)
		limit := size
		if i == len(chunks)-1 {
			limit = size + overlap - 1
		}
		if len(runes) > limit {
			t.Errorf("chunk[%d] has %d runes, limit %d", i, len(runes), limit)
		}
		if i == 0 {
			continue
		}
		prev := []rune(chunks[i-1])
		if string(prev[len(prev)-overlap:]) != string(runes[:overlap]) {
			t.Errorf("chunk[%d] does not repeat the last %d runes of its predecessor", i, overlap)
		}
	}
}

func TestSplitMultiByteRunes(t *testing.T) {
	c, err := New(4, 1)
	if err != nil {
		t.Fatal(err)
	}

	text := "日本語テキストの分割処理"
	chunks, err := c.Split(text)
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	for i, chunk := range chunks {
		if i == 0 {
			sb.WriteString(chunk)
			continue
		}
		sb.WriteString(string([]rune(chunk)[1:]))
	}
	if sb.String() != text {
		t.Errorf("reconstruction = %q, want %q", sb.String(), text)
	}
}
