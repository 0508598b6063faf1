package subscriptiondigest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"digest-stack/internal/models"
	"digest-stack/shared/ai"

	"github.com/google/uuid"
)

const (
	NoUpdatesMessage     = "No new updates were found from your subscriptions to summarize."
	SummaryFailedMessage = "Failed to generate summary or no summary was returned."
)

// RenderUpdates renders one line per update, or NoUpdatesMessage when that
// leaves nothing to summarize.
func RenderUpdates(updates []models.UpdateRecord) string {
	var b strings.Builder
	for _, u := range updates {
		b.WriteString(u.Line())
		b.WriteByte('\n')
	}
	if strings.TrimSpace(b.String()) == "" {
		return NoUpdatesMessage
	}
	return b.String()
}

// BuildReport fetches subscription updates and summarizes them. It always
// returns a report; failures are recorded on it.
func (d *DigestAgent) BuildReport(ctx context.Context) *models.DigestReport {
	report := &models.DigestReport{
		RunID:   uuid.NewString(),
		Date:    d.now(),
		Updates: []models.UpdateRecord{},
	}
	log := d.logger.WithField("run_id", report.RunID)
	log.Info("Starting YouTube subscription report")

	d.initFeed(ctx)
	if r, ok := d.feed.(tokenRefresher); ok {
		if err := r.RefreshToken(); err != nil {
			log.WithError(err).Warn("Failed to refresh OAuth token")
		}
	}

	updates, err := d.feed.FetchUpdates(ctx)
	if err != nil {
		log.WithError(err).Error("Error fetching subscription updates")
		report.FeedError = err.Error()
	} else {
		report.Updates = updates
	}

	log.WithField("updates", len(report.Updates)).Info("Processing fetched subscriber updates")
	report.Digest = RenderUpdates(report.Updates)
	if report.Digest == NoUpdatesMessage {
		log.Info("No textual content generated from updates, LLM will receive a default message")
	}

	report.Result = d.summarizer.Summarize(ctx, report.Digest, ai.ContentGeneric)
	return report
}

// WriteReport prints the update lines followed by the delimited summary.
func (d *DigestAgent) WriteReport(w io.Writer, report *models.DigestReport) error {
	summary := report.SummaryText()
	if summary == "" {
		summary = SummaryFailedMessage
	}

	_, err := fmt.Fprintf(w, "%s\n\n---Generated Report Summary---\n%s\n---End of Report---\n",
		strings.TrimRight(report.Digest, "\n"), summary)
	return err
}
