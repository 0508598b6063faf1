package subscriptiondigest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"digest-stack/internal/models"
	"digest-stack/shared/ai"
)

// FetchTranscripts fetches transcripts for refs in order.
func (d *DigestAgent) FetchTranscripts(ctx context.Context, refs []string, langs ...string) []models.TranscriptResult {
	return d.transcripts.FetchMany(ctx, refs, langs...)
}

// SummarizeVideos fetches each transcript and summarizes the ones that
// succeeded. The result has one entry per reference.
func (d *DigestAgent) SummarizeVideos(ctx context.Context, refs []string, langs ...string) []models.VideoDigest {
	transcripts := d.FetchTranscripts(ctx, refs, langs...)

	digests := make([]models.VideoDigest, len(transcripts))
	for i, t := range transcripts {
		digests[i].Transcript = t
		if !t.Success {
			continue
		}
		d.logger.WithField("video_id", t.VideoID).Info("Summarizing transcript")
		digests[i].Result = d.summarizer.Summarize(ctx, t.Text, ai.ContentTranscript)
	}
	return digests
}

// WriteTranscripts prints each transcript's status line and its text, or its
// timed segments when withSegments is set.
func WriteTranscripts(w io.Writer, results []models.TranscriptResult, withSegments bool) error {
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, r.Describe()); err != nil {
			return err
		}
		if !r.Success {
			continue
		}
		if withSegments {
			for _, s := range r.Segments {
				if _, err := fmt.Fprintf(w, "[%s] %s\n", formatTimestamp(s.Start), s.Text); err != nil {
					return err
				}
			}
			continue
		}
		if _, err := fmt.Fprintln(w, r.Text); err != nil {
			return err
		}
	}
	return nil
}

// WriteVideoDigests prints the status line and summary of each video.
func WriteVideoDigests(w io.Writer, digests []models.VideoDigest) error {
	var b strings.Builder
	for i, vd := range digests {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(vd.Transcript.Describe())
		b.WriteString("\n")

		if vd.Result == nil {
			continue
		}
		summary := vd.Result.Summary
		if summary == "" {
			summary = SummaryFailedMessage
		}
		b.WriteString("\n---Video Summary---\n")
		b.WriteString(summary)
		b.WriteString("\n")
		if !vd.Result.Success && vd.Result.Error != "" {
			fmt.Fprintf(&b, "Error: %s\n", vd.Result.Error)
		}
		if t := vd.Result.Tokens; t != nil {
			fmt.Fprintf(&b, "Tokens: %d prompt, %d completion, %d total\n", t.Prompt, t.Completion, t.Total)
		}
		b.WriteString("---End of Summary---\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatTimestamp(seconds float64) string {
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
