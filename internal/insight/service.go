package insight

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ervinoantonio-ui/vetmaster/internal/clinic"
)

// Fallback is shown whenever the external service cannot produce an
// insight, for any reason.
const Fallback = "Não foi possível carregar os insights de IA no momento."

const (
	requestTimeout = 30 * time.Second
	retryBackoff   = 500 * time.Millisecond
)

// Generator abstracts the text-generation client for testing.
type Generator interface {
	Configured() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service turns an animal's record and history into an insight string.
// Concurrent requests for the same animal coalesce into one outstanding
// call, so a second request is never issued while one is in flight.
type Service struct {
	client Generator
	group  singleflight.Group
}

// NewService creates a Service over the given client. A nil or
// unconfigured client is allowed; every request then yields Fallback.
func NewService(client Generator) *Service {
	return &Service{client: client}
}

// Request builds the prompt and queries the external service. It always
// returns a displayable string: the model's response on success, the
// fixed Fallback on any failure (missing key, transport error, timeout,
// empty response). One retry is attempted before giving up.
func (s *Service) Request(ctx context.Context, animal clinic.Animal, history []clinic.MedicalRecord) string {
	if s.client == nil || !s.client.Configured() {
		slog.Warn("insight requested without a configured API key")
		return Fallback
	}

	prompt := BuildPrompt(animal, history)

	v, err, _ := s.group.Do(animal.ID, func() (any, error) {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		text, err := s.client.Generate(reqCtx, prompt)
		if err == nil {
			return text, nil
		}
		slog.Warn("insight request failed, retrying once", "animal", animal.ID, "error", err)

		select {
		case <-reqCtx.Done():
			return nil, reqCtx.Err()
		case <-time.After(retryBackoff):
		}
		return s.client.Generate(reqCtx, prompt)
	})
	if err != nil {
		slog.Warn("insight unavailable", "animal", animal.ID, "error", err)
		return Fallback
	}
	return v.(string)
}
