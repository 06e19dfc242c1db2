package wiki

import "testing"

func TestSanitizeEdgeType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain label",
			input: "brother_of",
			want:  "brother_of",
		},
		{
			name:  "spaces",
			input: "brother of",
			want:  "brother_of",
		},
		{
			name:  "comma and semicolon",
			input: "friend,ally;rival",
			want:  "friend_ally_rival",
		},
		{
			name:  "slash ampersand backslash",
			input: `lives/works&rests\here`,
			want:  "lives_works_rests_here",
		},
		{
			name:  "fullwidth comma",
			input: "师傅，徒弟",
			want:  "师傅_徒弟",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  owns  ",
			want:  "owns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeEdgeType(tt.input)
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
