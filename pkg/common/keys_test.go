package common

import "testing"

func TestChunkRangeKey(t *testing.T) {
	tests := []struct {
		name  string
		start int
		end   int
		want  string
	}{
		{"single chapter", 3, 4, "c3"},
		{"two chapters", 3, 5, "c3-4"},
		{"wide span", 1, 11, "c1-10"},
		{"degenerate range", 7, 7, "c7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChunkRangeKey(tt.start, tt.end); got != tt.want {
				t.Errorf("ChunkRangeKey(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestChunkRangeStart(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want int
	}{
		{"single chapter", "c3", 3},
		{"range", "c3-5", 3},
		{"large start", "c120-140", 120},
		{"malformed", "chapter three", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChunkRangeStart(tt.key); got != tt.want {
				t.Errorf("ChunkRangeStart(%q) = %d, want %d", tt.key, got, tt.want)
			}
		})
	}
}
