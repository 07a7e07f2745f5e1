package quote

import (
	"context"
	"fmt"
	"time"

	"cotizador/internal/services/llm"

	"github.com/rs/zerolog/log"
)

// Mode selects how itineraries are produced
type Mode string

const (
	ModeModel Mode = "model"
	ModeMock  Mode = "mock"
)

const defaultTimeout = 30 * time.Second

// Options is fixed at construction time so both modes can coexist in one process
type Options struct {
	Mode        Mode
	Model       string
	Temperature float64
	Timeout     time.Duration
	IDPolicy    IDPolicy
}

// QuoteService turns a quotation request into an itinerary
type QuoteService struct {
	llm       llm.CompletionClient
	opts      Options
	extractor *Extractor
}

// NewQuoteService creates a new QuoteService. client may be nil in mock mode.
func NewQuoteService(client llm.CompletionClient, opts Options) *QuoteService {
	if opts.Mode == "" {
		opts.Mode = ModeModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.IDPolicy == "" {
		opts.IDPolicy = IDPolicyStrict
	}

	return &QuoteService{
		llm:       client,
		opts:      opts,
		extractor: DefaultExtractor,
	}
}

// Mode reports the mode the service was built with
func (s *QuoteService) Mode() Mode {
	return s.opts.Mode
}

// Quote builds the model context, calls the completion service and extracts
// a validated itinerary. Any failure is returned as a *Error.
func (s *QuoteService) Quote(ctx context.Context, req QuotationRequest) (*Itinerary, error) {
	logger := log.With().
		Str("mode", string(s.opts.Mode)).
		Int("servicios", len(req.Servicios)).
		Logger()

	logger.Info().Str("prompt", req.PromptText()).Msg("Quotation requested")

	if s.opts.Mode == ModeMock {
		return mockItinerary(), nil
	}

	if s.llm == nil {
		return nil, providerError("request completion", fmt.Errorf("no completion client configured"))
	}

	completion := BuildCompletionRequest(
		req.PromptText(),
		BuildContext(req.Servicios),
		CompletionParams{Model: s.opts.Model, Temperature: s.opts.Temperature},
	)

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.llm.Complete(callCtx, completion)
	if err != nil {
		logger.Error().
			Err(err).
			Bool("transient", llm.IsTransient(err)).
			Dur("duration", time.Since(start)).
			Msg("Completion request failed")
		return nil, providerError("request completion", err)
	}

	logger.Info().
		Str("raw", raw).
		Dur("duration", time.Since(start)).
		Msg("Raw completion received")

	itinerary, err := s.extractor.Extract(raw)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to extract itinerary from completion")
		return nil, err
	}

	if err := ValidateItinerary(itinerary, req.Servicios, s.opts.IDPolicy); err != nil {
		logger.Error().Err(err).Msg("Extracted itinerary failed validation")
		return nil, err
	}

	logger.Info().
		Int("dias", len(itinerary.Itinerario)).
		Float64("estimado_total", itinerary.EstimadoTotal).
		Msg("Itinerary built")

	return itinerary, nil
}
