package youtube

import "testing"

func TestResolve(t *testing.T) {
	const id = "dQw4w9WgXcQ"

	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", id, true},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", id, true},
		{"bare id", "dQw4w9WgXcQ", id, true},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", id, true},
		{"legacy v url", "https://www.youtube.com/v/dQw4w9WgXcQ", id, true},
		{"watch url with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", id, true},
		{"v not first param", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", id, true},
		{"short url with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", id, true},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", id, true},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", id, true},
		{"surrounding whitespace", "  dQw4w9WgXcQ\n", id, true},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", id, true},
		{"not a video", "not a video", "", false},
		{"empty", "", "", false},
		{"id too short", "dQw4w9WgXc", "", false},
		{"id too long", "dQw4w9WgXcQQ", "", false},
		{"bad characters", "dQw4w9WgX!Q", "", false},
		{"truncated watch url", "https://www.youtube.com/watch?v=abc", "", false},
		{"other site", "https://vimeo.com/123456789", "", false},
		{"param ending in v", "https://www.youtube.com/watch?xv=dQw4w9WgXcQ", "", false},
		{"later param ending in v", "https://www.youtube.com/watch?list=PL1&pv=dQw4w9WgXcQ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.input)
			if ok != tt.wantOK || got != tt.wantID {
				t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestResolveIsCanonical(t *testing.T) {
	inputs := []string{
		"https://www.youtube.com/watch?v=abc_DEF-123",
		"https://youtu.be/abc_DEF-123",
		"abc_DEF-123",
		"https://www.youtube.com/embed/abc_DEF-123",
	}
	for _, in := range inputs {
		got, ok := Resolve(in)
		if !ok || !videoIDPattern.MatchString(got) {
			t.Errorf("Resolve(%q) = %q, not a canonical ID", in, got)
		}
	}
}
