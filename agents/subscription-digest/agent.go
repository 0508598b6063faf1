package subscriptiondigest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"digest-stack/agents/subscription-digest/youtube"
	"digest-stack/internal/models"
	"digest-stack/shared/ai"
	"digest-stack/shared/config"
	"digest-stack/shared/email"
	"digest-stack/shared/logging"
	"digest-stack/shared/scheduler"

	"github.com/sirupsen/logrus"
)

// UpdateSource lists recent activity from subscribed channels.
type UpdateSource interface {
	FetchUpdates(ctx context.Context) ([]models.UpdateRecord, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, content string, contentType ai.ContentType) *models.CompletionResult
}

type TranscriptSource interface {
	FetchMany(ctx context.Context, refs []string, langs ...string) []models.TranscriptResult
}

type ReportSender interface {
	Enabled() bool
	SendReport(report *models.DigestReport) error
}

// tokenRefresher is implemented by feeds that hold an OAuth token.
type tokenRefresher interface {
	RefreshToken() error
}

// DigestMetrics represents the outcome of one digest run
type DigestMetrics struct {
	Updates          int  `json:"updates"`
	FeedFailed       bool `json:"feed_failed"`
	SummaryGenerated bool `json:"summary_generated"`
	EmailSent        bool `json:"email_sent"`
}

// GetSummary implements the scheduler.Metrics interface
func (m DigestMetrics) GetSummary() string {
	var s string
	switch {
	case m.FeedFailed:
		s = "subscription feed unavailable"
	case m.Updates == 0:
		s = "no new updates"
	default:
		s = fmt.Sprintf("%d updates", m.Updates)
	}

	if m.SummaryGenerated {
		s += ", summary generated"
	} else {
		s += ", no summary"
	}
	if m.EmailSent {
		s += ", email sent"
	}
	return s
}

// DigestAgent implements the scheduler.Agent interface
type DigestAgent struct {
	config      *config.Config
	feed        UpdateSource
	summarizer  Summarizer
	transcripts TranscriptSource
	sender      ReportSender
	out         io.Writer
	logger      logrus.FieldLogger
	now         func() time.Time
}

// NewDigestAgent writes reports to out, or stdout when out is nil.
func NewDigestAgent(cfg *config.Config, out io.Writer, logger logrus.FieldLogger) *DigestAgent {
	if out == nil {
		out = os.Stdout
	}
	return &DigestAgent{
		config: cfg,
		out:    out,
		logger: logging.OrDiscard(logger),
		now:    time.Now,
	}
}

func (d *DigestAgent) Name() string {
	return "Subscription Digest"
}

// Initialize builds the collaborators that were not injected. Provider
// problems surface in each run's results rather than here.
func (d *DigestAgent) Initialize() error {
	if d.config == nil {
		return fmt.Errorf("%s requires a configuration", d.Name())
	}
	d.logger.Infof("Initializing %s...", d.Name())

	if d.summarizer == nil {
		s := ai.NewSummarizer(context.Background(), d.config.LLM, d.logger)
		if !s.IsConfigured() {
			d.logger.WithField("model", s.Model()).Warn("LLM is not configured, summaries will be placeholders")
		}
		d.summarizer = s
	}

	if d.transcripts == nil {
		client := &http.Client{Timeout: d.config.Transcript.Timeout()}
		d.transcripts = youtube.NewTranscriptFetcher(youtube.NewInnertubeSource(client), d.config.Transcript.Languages, d.logger)
	}

	if d.sender == nil {
		d.sender = email.NewSender(&d.config.Email, d.logger)
	}

	return nil
}

// initFeed is separate from Initialize so transcript-only commands never
// trigger the OAuth device flow.
func (d *DigestAgent) initFeed(ctx context.Context) {
	if d.feed == nil {
		d.feed = youtube.NewFeed(ctx, &d.config.YouTube, d.logger)
	}
}

func (d *DigestAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	report := d.BuildReport(ctx)
	log := d.logger.WithField("run_id", report.RunID)

	metrics := DigestMetrics{
		Updates:          len(report.Updates),
		FeedFailed:       report.FeedError != "",
		SummaryGenerated: report.Result != nil && report.Result.Success,
	}

	if err := d.WriteReport(d.out, report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if report.FeedError != "" && events != nil && events.OnPartialFailure != nil {
		events.OnPartialFailure(fmt.Errorf("subscription feed: %s", report.FeedError), time.Since(startTime))
	}
	if report.Result != nil && !report.Result.Success && events != nil && events.OnPartialFailure != nil {
		events.OnPartialFailure(fmt.Errorf("summary: %s", report.Result.Error), time.Since(startTime))
	}

	if d.sender != nil && d.sender.Enabled() {
		if err := d.sender.SendReport(report); err != nil {
			log.WithError(err).Error("Failed to send email report")
			if events != nil && events.OnPartialFailure != nil {
				events.OnPartialFailure(fmt.Errorf("failed to send email report: %w", err), time.Since(startTime))
			}
		} else {
			metrics.EmailSent = true
		}
	}

	duration := time.Since(startTime)
	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, duration)
	}

	log.WithField("duration", duration).Info("Report generation process complete")
	return nil
}
