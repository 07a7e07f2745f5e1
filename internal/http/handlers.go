package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"cotizador/internal/services/quote"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// QuoteHandler handles itinerary quotation requests
type QuoteHandler struct {
	quoteService *quote.QuoteService
	validate     *validator.Validate
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService *quote.QuoteService) *QuoteHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &QuoteHandler{quoteService: quoteService, validate: validate}
}

// RegisterRoutes registers the quotation routes
func (h *QuoteHandler) RegisterRoutes(r chi.Router) {
	r.Post("/cotizar", h.Cotizar)
}

// Cotizar handles POST /cotizar
func (h *QuoteHandler) Cotizar(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req quote.QuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, quote.ValidationError(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, quote.ValidationError(describeValidation(err)))
		return
	}

	itinerary, err := h.quoteService.Quote(r.Context(), req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("kind", quote.KindOf(err).String()).
			Msg("Error processing quotation")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, itinerary)
}

// statusFor maps a quotation failure to its HTTP status. Extraction and
// provider failures share 500.
func statusFor(err error) int {
	switch quote.KindOf(err) {
	case quote.KindValidation:
		return http.StatusUnprocessableEntity
	case quote.KindExtraction, quote.KindProvider:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, ", "))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), quote.ErrorResponse{Detail: err.Error()})
}
