package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPostMarshalJSON_MetaAlias(t *testing.T) {
	p := Post{ID: "abc", Title: "Hello", ReadingTime: "6 min read", Views: 42}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got["readingTime"] != "6 min read" {
		t.Errorf("readingTime = %v", got["readingTime"])
	}
	meta, ok := got["meta"].(map[string]any)
	if !ok {
		t.Fatalf("meta missing from %s", data)
	}
	if meta["readingTime"] != "6 min read" || meta["views"] != float64(42) {
		t.Errorf("meta = %v", meta)
	}
	if got["publishedAt"] != nil {
		t.Errorf("publishedAt = %v, want null", got["publishedAt"])
	}
	if tags, ok := got["tags"].([]any); !ok || len(tags) != 0 {
		t.Errorf("tags = %v, want empty array", got["tags"])
	}
	if _, ok := got["contentHtml"]; ok {
		t.Error("contentHtml should be omitted when empty")
	}
}

func TestProjectJSON_TagsAlias(t *testing.T) {
	p := Project{ID: "p1", Name: "App", TechStack: []string{"Go", "SQLite"}, Status: ProjectActive}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"techStack":["Go","SQLite"]`) ||
		!strings.Contains(string(data), `"tags":["Go","SQLite"]`) {
		t.Errorf("encoded project = %s", data)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "techStack only", input: `{"techStack":["A"]}`, want: "A"},
		{name: "tags only", input: `{"tags":["B","C"]}`, want: "B,C"},
		{name: "both prefers techStack", input: `{"techStack":["A"],"tags":["B"]}`, want: "A"},
		{name: "neither", input: `{}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Project
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if s := strings.Join(got.TechStack, ","); s != tt.want {
				t.Errorf("TechStack = %q, want %q", s, tt.want)
			}
		})
	}
}

func TestProjectStatusValid(t *testing.T) {
	tests := []struct {
		status ProjectStatus
		want   bool
	}{
		{ProjectActive, true},
		{ProjectArchived, true},
		{"", false},
		{"Active", false},
		{"deleted", false},
	}
	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("ProjectStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

// TestUserRequires2FA verifies that a code is demanded only when TOTP is
// enabled and a secret is stored.
func TestUserRequires2FA(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	empty := ""

	tests := []struct {
		name    string
		secret  *string
		enabled bool
		want    bool
	}{
		{name: "enabled with secret", secret: &secret, enabled: true, want: true},
		{name: "pending setup", secret: &secret, enabled: false, want: false},
		{name: "enabled without secret", secret: nil, enabled: true, want: false},
		{name: "enabled with empty secret", secret: &empty, enabled: true, want: false},
		{name: "fresh user", secret: nil, enabled: false, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{TOTPSecret: tt.secret, TOTPEnabled: tt.enabled}
			if got := u.Requires2FA(); got != tt.want {
				t.Errorf("Requires2FA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserJSONHidesSecrets(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	u := User{Email: "a@b.c", PasswordHash: "$2a$hash", TOTPSecret: &secret, CreatedAt: time.Now()}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hash") || strings.Contains(string(data), secret) {
		t.Errorf("user JSON leaks secrets: %s", data)
	}
}
