package textenc

import "testing"

func TestDecodeMacRoman(t *testing.T) {
	testCases := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "plain ASCII",
			input:    []byte("README"),
			expected: "README",
		},
		{
			name:     "accented letter",
			input:    []byte{'B', 'e', 0x8E, 't', 'e'}, // 0x8E == é
			expected: "Beéte",
		},
		{
			name:     "trademark sign",
			input:    []byte{'M', 'a', 'c', 0xAA}, // 0xAA == ™
			expected: "Mac™",
		},
		{
			name:     "empty input",
			input:    []byte{},
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeMacRoman(tc.input)
			if got != tc.expected {
				t.Errorf("DecodeMacRoman(%v) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestEncodeMacRoman_RoundTrip(t *testing.T) {
	names := []string{"README", "Beéte", "Mac™", "Ünïcödé"}
	for _, name := range names {
		encoded := EncodeMacRoman(name)
		decoded := DecodeMacRoman(encoded)
		if decoded != name {
			t.Errorf("round trip for %q produced %q", name, decoded)
		}
	}
}

func TestEncodeMacRoman_Unmappable(t *testing.T) {
	got := EncodeMacRoman("日本語")
	for _, b := range got {
		if b != '?' {
			t.Errorf("expected fallback '?' bytes for unmappable input, got %v", got)
			break
		}
	}
}
