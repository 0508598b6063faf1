package models

import "time"

// DigestReport is the outcome of one subscription digest run.
type DigestReport struct {
	RunID     string            `json:"run_id"`
	Date      time.Time         `json:"date"`
	Updates   []UpdateRecord    `json:"updates"`
	Digest    string            `json:"digest"`
	Result    *CompletionResult `json:"result"`
	FeedError string            `json:"feed_error,omitempty"`
}

// SummaryText returns the summary to display, or empty when none was produced.
func (r *DigestReport) SummaryText() string {
	if r == nil || r.Result == nil {
		return ""
	}
	return r.Result.Summary
}

// VideoDigest pairs a transcript fetch with the summary generated from it.
// Result is nil when the transcript could not be fetched.
type VideoDigest struct {
	Transcript TranscriptResult  `json:"transcript"`
	Result     *CompletionResult `json:"result,omitempty"`
}
