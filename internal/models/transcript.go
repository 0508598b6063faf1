package models

import "fmt"

// Segment is one timed caption entry of a transcript track.
type Segment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// TranscriptResult is the outcome of one transcript fetch attempt.
// Empty VideoID, Text, Language or Error mean the value is absent.
type TranscriptResult struct {
	Success  bool      `json:"success"`
	VideoID  string    `json:"video_id,omitempty"`
	Text     string    `json:"transcript,omitempty"`
	Segments []Segment `json:"structured_transcript,omitempty"`
	Language string    `json:"language,omitempty"`
	Error    string    `json:"error,omitempty"`
}

func (r TranscriptResult) LengthChars() int {
	return len([]rune(r.Text))
}

func (r TranscriptResult) LengthEntries() int {
	return len(r.Segments)
}

// Describe returns a one-line status of the fetch for logs and console output.
func (r TranscriptResult) Describe() string {
	if !r.Success {
		return fmt.Sprintf("❌ Failed: %s", r.Error)
	}
	return fmt.Sprintf("✅ Video ID: %s | Language: %s | Length: %d chars | Segments: %d",
		r.VideoID, r.Language, r.LengthChars(), r.LengthEntries())
}
