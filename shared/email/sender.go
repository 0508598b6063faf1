package email

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"digest-stack/internal/models"
	"digest-stack/shared/config"
	"digest-stack/shared/logging"

	"github.com/sirupsen/logrus"
)

//go:embed digest_template.html
var digestTemplate string

var reportTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"date": func(r *models.DigestReport) string { return r.Date.Format("Monday, January 2, 2006") },
}).Parse(digestTemplate))

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	config *config.EmailConfig
	send   sendFunc
	logger logrus.FieldLogger
}

func NewSender(cfg *config.EmailConfig, logger logrus.FieldLogger) *Sender {
	return &Sender{
		config: cfg,
		send:   smtp.SendMail,
		logger: logging.OrDiscard(logger),
	}
}

// Enabled reports whether an SMTP server and recipient are configured.
func (s *Sender) Enabled() bool {
	return s.config != nil && s.config.Enabled()
}

func (s *Sender) SendReport(report *models.DigestReport) error {
	if report == nil {
		return errors.New("report cannot be nil")
	}
	if !s.Enabled() {
		return nil
	}

	subject := fmt.Sprintf("YouTube Subscription Digest - %d Updates (%s)",
		len(report.Updates), report.Date.Format("Jan 2, 2006"))

	body, err := generateEmailBody(report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	if err := s.SendHTML(subject, body); err != nil {
		return err
	}
	s.logger.WithField("to", s.config.ToEmail).Info("Email report sent")
	return nil
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)
	}

	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	if err := s.send(addr, auth, s.config.FromEmail, []string{s.config.ToEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}
	return nil
}

type emailView struct {
	Report   *models.DigestReport
	Summary  []string
	Failed   bool
	ErrorMsg string
}

func generateEmailBody(report *models.DigestReport) (string, error) {
	view := emailView{Report: report}
	if text := report.SummaryText(); text != "" {
		view.Summary = strings.Split(text, "\n")
	}
	if report.Result == nil || !report.Result.Success {
		view.Failed = true
		if report.Result != nil {
			view.ErrorMsg = report.Result.Error
		}
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
