package youtube

import (
	"regexp"
	"strings"
)

// videoRefPatterns are tried in order; the first capture wins.
var videoRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/|youtube\.com/shorts/|youtube\.com/live/)([A-Za-z0-9_-]{11})(?:[&?#/]|$)`),
	regexp.MustCompile(`youtube\.com/watch\?(?:.*?&)?v=([A-Za-z0-9_-]{11})(?:[&#]|$)`),
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Resolve extracts the 11-character video ID from a watch, short, embed or
// bare-ID reference. ok is false when the input is not a video reference.
func Resolve(input string) (id string, ok bool) {
	ref := strings.TrimSpace(input)
	for _, re := range videoRefPatterns {
		if m := re.FindStringSubmatch(ref); m != nil {
			return m[1], true
		}
	}
	if videoIDPattern.MatchString(ref) {
		return ref, true
	}
	return "", false
}

// WatchURL is the canonical watch page for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
