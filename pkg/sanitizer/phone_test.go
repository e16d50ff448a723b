package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{
			name:   "valid E.164 format",
			input:  "+4930123456",
			region: "DE",
			want:   "+4930123456",
		},
		{
			name:   "with spaces",
			input:  "+49 30 123456",
			region: "DE",
			want:   "+4930123456",
		},
		{
			name:   "national format in default region",
			input:  "030 123456",
			region: "DE",
			want:   "+4930123456",
		},
		{
			name:   "with parentheses",
			input:  "+1 (650) 253-0000",
			region: "DE",
			want:   "+16502530000",
		},
		{
			name:   "lowercase region",
			input:  "(650) 253-0000",
			region: "us",
			want:   "+16502530000",
		},
		{
			name:   "leading and trailing spaces",
			input:  "  +4930123456  ",
			region: "DE",
			want:   "+4930123456",
		},
		{
			name:   "empty string",
			input:  "",
			region: "DE",
			want:   "",
		},
		{
			name:   "only whitespace",
			input:  "   ",
			region: "DE",
			want:   "",
		},
		{
			name:   "letters",
			input:  "call me maybe",
			region: "DE",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input, tt.region)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once := NormalizePhone("+1 (650) 253-0000", "DE")
	if twice := NormalizePhone(once, "DE"); twice != once {
		t.Errorf("NormalizePhone not idempotent: %q then %q", once, twice)
	}
}
