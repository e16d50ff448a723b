package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Anna Schmidt  ",
			want:  "Anna Schmidt",
		},
		{
			name:  "multiple spaces between words",
			input: "Anna    Schmidt",
			want:  "Anna Schmidt",
		},
		{
			name:  "tabs and newlines",
			input: "Anna\t\nSchmidt",
			want:  "Anna Schmidt",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Jürgen & Söhne™ ",
			want:  "Jürgen & Söhne™",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeMail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Anna.Schmidt@Example.COM ", "anna.schmidt@example.com"},
		{"", ""},
		{"plain@example.com", "plain@example.com"},
	}

	for _, tt := range tests {
		if got := NormalizeMail(tt.input); got != tt.want {
			t.Errorf("NormalizeMail(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeComment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single line",
			input: "  bring   a projector ",
			want:  "bring a projector",
		},
		{
			name:  "keeps line breaks",
			input: "line one\nline   two",
			want:  "line one\nline two",
		},
		{
			name:  "collapses blank lines",
			input: "first\n\n\n\nsecond",
			want:  "first\n\nsecond",
		},
		{
			name:  "windows line endings",
			input: "first\r\nsecond\r\n",
			want:  "first\nsecond",
		},
		{
			name:  "leading and trailing blank lines",
			input: "\n\n  text  \n\n",
			want:  "text",
		},
		{
			name:  "only whitespace",
			input: " \n\t\n ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeComment(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeComment(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIDs(t *testing.T) {
	got := NormalizeIDs([]string{" room-1", "room-1", "", "room-2 ", "  "})
	want := []string{"room-1", "room-2"}

	if len(got) != len(want) {
		t.Fatalf("NormalizeIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := NormalizeIDs(nil); got == nil || len(got) != 0 {
		t.Errorf("NormalizeIDs(nil) = %v, want empty slice", got)
	}
}

func TestTrimAndNormalize_Idempotent(t *testing.T) {
	inputs := []string{"  a   b  ", "x\ty", "", "already clean"}
	for _, in := range inputs {
		once := TrimAndNormalize(in)
		if twice := TrimAndNormalize(once); twice != once {
			t.Errorf("TrimAndNormalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
