// Package mail relays survey submissions to the configured mailbox.
// Delivery is best-effort: the survey is already persisted before the
// relay runs, and a failed send is logged by the caller, never fatal.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/starford/pulse/internal/models"
)

const (
	defaultPrimaryURL  = "https://api.emailjs.com/api/v1.0/email/send"
	defaultFallbackURL = "https://api.web3forms.com/submit"

	surveySubject = "Employee Survey Submission"
)

// Config carries the relay credentials and recipient.
type Config struct {
	ServiceID  string `yaml:"service_id"`
	TemplateID string `yaml:"template_id"`
	UserID     string `yaml:"user_id"`
	AccessKey  string `yaml:"access_key"`
	ToEmail    string `yaml:"to_email"`
	FromName   string `yaml:"from_name"`
}

// Relay sends through the primary transactional endpoint and falls back
// to the secondary one when the primary fails.
type Relay struct {
	client      *http.Client
	primaryURL  string
	fallbackURL string
	cfg         Config
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithEndpoints overrides both relay endpoints.
func WithEndpoints(primary, fallback string) RelayOption {
	return func(r *Relay) {
		r.primaryURL = primary
		r.fallbackURL = fallback
	}
}

// WithRelayHTTPClient overrides the HTTP client.
func WithRelayHTTPClient(c *http.Client) RelayOption {
	return func(r *Relay) { r.client = c }
}

// NewRelay returns a relay against the public endpoints.
func NewRelay(cfg Config, opts ...RelayOption) *Relay {
	r := &Relay{
		client:      &http.Client{Timeout: 15 * time.Second},
		primaryURL:  defaultPrimaryURL,
		fallbackURL: defaultFallbackURL,
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SendSurvey formats and relays one survey response. The returned
// transport is "primary" or "fallback".
func (r *Relay) SendSurvey(ctx context.Context, resp models.SurveyResponse) (string, error) {
	message := FormatSurvey(resp)

	primaryErr := r.post(ctx, r.primaryURL, map[string]any{
		"service_id":  r.cfg.ServiceID,
		"template_id": r.cfg.TemplateID,
		"user_id":     r.cfg.UserID,
		"template_params": map[string]string{
			"to_email":  r.cfg.ToEmail,
			"from_name": r.cfg.FromName,
			"subject":   surveySubject,
			"message":   message,
		},
	})
	if primaryErr == nil {
		return "primary", nil
	}

	fallbackErr := r.post(ctx, r.fallbackURL, map[string]any{
		"access_key": r.cfg.AccessKey,
		"subject":    surveySubject,
		"email":      r.cfg.ToEmail,
		"message":    message,
	})
	if fallbackErr == nil {
		return "fallback", nil
	}
	return "", fmt.Errorf("mail: primary: %v; fallback: %w", primaryErr, fallbackErr)
}

func (r *Relay) post(ctx context.Context, url string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// FormatSurvey renders the plain-text body for a survey response.
func FormatSurvey(resp models.SurveyResponse) string {
	return fmt.Sprintf(`Employee Survey Results:

Ratings (1-5 stars):
- Job Satisfaction: %d/5
- Work-Life Balance: %d/5
- Team Collaboration: %d/5
- Management Support: %d/5
- Career Development: %d/5
- Work Environment: %d/5
- Recommendation Score: %d/5

Feedback:
%s

Suggested Improvements:
%s

Submitted on: %s`,
		resp.JobSatisfaction,
		resp.WorkLifeBalance,
		resp.TeamCollaboration,
		resp.ManagementSupport,
		resp.CareerDevelopment,
		resp.WorkEnvironment,
		resp.Recommend,
		orDefault(resp.Feedback, "No feedback provided"),
		orDefault(resp.Improvements, "No suggestions provided"),
		resp.SubmittedAt,
	)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
