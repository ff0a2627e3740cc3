package section

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Experience", "experience"},
		{"WORK EXPERIENCE", "workexperience"},
		{"Skills:", "skills"},
		{"e x p e r i e n c e", "experience"},
		{"Éducation", "education"},
		{"  Summary  ", "summary"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Professional Experience", "e d u c a t i o n", "Skills & Tools"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestTrimTrailingColon(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Experience:", "Experience"},
		{"Experience", "Experience"},
		{"Skills: ", "Skills"},
	}
	for _, tt := range tests {
		if got := TrimTrailingColon(tt.in); got != tt.want {
			t.Errorf("TrimTrailingColon(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
