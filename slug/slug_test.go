package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Morning Workout Routine", "morning-workout-routine"},
		{"punctuation", "10 Tips: Eat Better!", "10-tips-eat-better"},
		{"accents", "Café in São Paulo", "cafe-in-sao-paulo"},
		{"underscores", "full_body_workout", "full-body-workout"},
		{"collapsed hyphens", "a -- b", "a-b"},
		{"empty", "", ""},
		{"symbols only", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateLengthLimit(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "verylongword "
	}

	got := Generate(long)
	if len(got) > 100 {
		t.Errorf("slug length = %d, want <= 100", len(got))
	}
	if got[len(got)-1] == '-' {
		t.Errorf("slug %q has trailing hyphen after truncation", got)
	}
}

func TestFromURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"reel url", "https://instagram.com/reel/AbC123xyz/", "abc123xyz"},
		{"query stripped", "https://youtube.com/watch?v=dQw4w9WgXcQ", "watch"},
		{"article path", "https://blog.example.com/posts/go-generics-explained", "go-generics-explained"},
		{"bare host", "https://example.com", "examplecom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromURL(tt.input); got != tt.want {
				t.Errorf("FromURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestForRecord(t *testing.T) {
	if got := ForRecord("My Title", "https://x.com/status/1", "twitter"); got != "my-title" {
		t.Errorf("ForRecord with title = %q, want my-title", got)
	}
	if got := ForRecord("", "https://x.com/user/status/12345", "twitter"); got != "12345" {
		t.Errorf("ForRecord from URL = %q, want 12345", got)
	}
	if got := ForRecord("!!!", "https://x.com/???/", "twitter"); got != "twitter" {
		t.Errorf("ForRecord platform fallback = %q, want twitter", got)
	}
}
