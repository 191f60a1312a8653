// Package share builds share payloads for newsletters and delivers them
// through a native share hook when one is installed, falling back to the
// system clipboard otherwise.
package share

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/starford/pulse/internal/models"
)

// Payload is the shareable summary of a newsletter.
type Payload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// PayloadFor builds the share payload for one newsletter.
func PayloadFor(n models.Newsletter, baseURL string) Payload {
	return Payload{
		Title: n.Title,
		Text:  n.Excerpt,
		URL:   fmt.Sprintf("%s/posts/%d", baseURL, n.ID),
	}
}

// NativeFunc hands the payload to a platform share sheet. A non-nil
// error falls the service back to the clipboard.
type NativeFunc func(Payload) error

// Service shares payloads, preferring the native hook.
type Service struct {
	native    NativeFunc
	writeText func(string) error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNative installs a native share hook tried before the clipboard.
func WithNative(fn NativeFunc) ServiceOption {
	return func(s *Service) { s.native = fn }
}

// withClipboard overrides the clipboard writer. Test hook.
func withClipboard(fn func(string) error) ServiceOption {
	return func(s *Service) { s.writeText = fn }
}

// NewService returns a Service writing to the system clipboard.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{writeText: clipboard.WriteAll}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Share delivers the payload. The returned method is "native" or
// "clipboard"; the clipboard gets the payload URL.
func (s *Service) Share(p Payload) (string, error) {
	if s.native != nil {
		if err := s.native(p); err == nil {
			return "native", nil
		}
	}
	if err := s.writeText(p.URL); err != nil {
		return "", fmt.Errorf("share: clipboard: %w", err)
	}
	return "clipboard", nil
}
