package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Hello World 2026", want: "hello-world-2026"},
		{name: "punctuation", input: "Hello World!!", want: "hello-world"},
		{name: "slashes", input: "Refining CI/CD for mobile apps", want: "refining-cicd-for-mobile-apps"},
		{name: "tabs and newlines", input: "Inside\tmy\niOS stack", want: "inside-my-ios-stack"},
		{name: "repeated spaces", input: "a    b", want: "a-b"},
		{name: "leading and trailing hyphens", input: "--Go--", want: "go"},
		{name: "colon in title", input: "Aztlan: scaling a booking app", want: "aztlan-scaling-a-booking-app"},
		{name: "only symbols", input: "!!!", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if got != "" && !Valid(got) {
				t.Errorf("Generate(%q) = %q is not a valid slug", tt.input, got)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SwiftUI", "swiftui"},
		{"iOS Design", "ios-design"},
		{"Mobile  DevOps", "mobile-devops"},
		{"  React Native ", "react-native"},
		{"CI/CD", "ci/cd"},
		{"Mobile", "mobile"},
	}
	for _, tt := range tests {
		if got := Key(tt.input); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// TestKeyIdempotent verifies that names differing only in case and spacing
// map to the same id.
func TestKeyIdempotent(t *testing.T) {
	if Key("iOS Design") != Key("ios   design") {
		t.Error("Key should coalesce case and whitespace variants")
	}
	if Key(Key("React Native")) != Key("React Native") {
		t.Error("Key should be idempotent")
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hello-world", true},
		{"post-2026", true},
		{"a", true},
		{"Hello-World", false},
		{"hello world", false},
		{"hello_world", false},
		{"", false},
		{"héllo", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.input); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
