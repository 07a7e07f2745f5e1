package quote

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```(?i:json)\\s*(\\{.*?\\})\\s*```")

var errInvalidJSON = errors.New("candidate is not valid JSON")

// Strategy proposes candidate payloads found in raw model output, in the
// order they should be tried.
type Strategy struct {
	Name       string
	Candidates func(raw string) []string
}

// Extractor runs its strategies in order; the first candidate that is valid
// JSON wins.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor creates an Extractor trying strategies in the given order
func NewExtractor(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// DefaultExtractor looks for a ```json fenced block first and falls back to
// scanning the whole text for brace-delimited objects.
var DefaultExtractor = NewExtractor(FencedBlock(), BraceScan())

// ExtractItinerary recovers an Itinerary from raw model output using DefaultExtractor
func ExtractItinerary(raw string) (*Itinerary, error) {
	return DefaultExtractor.Extract(raw)
}

// Extract picks the first candidate that is syntactically valid JSON and
// reads it as an Itinerary. Numbers are read leniently, so 12.0 and "12000"
// are accepted. Catalog checks happen later in ValidateItinerary.
func (e *Extractor) Extract(raw string) (*Itinerary, error) {
	for _, strategy := range e.strategies {
		for i, candidate := range strategy.Candidates(raw) {
			if !gjson.Valid(candidate) {
				log.Warn().
					Err(errInvalidJSON).
					Str("strategy", strategy.Name).
					Int("candidate", i).
					Msg("Discarding unparseable payload candidate")
				continue
			}

			log.Debug().
				Str("strategy", strategy.Name).
				Int("candidate", i).
				Msg("Itinerary payload extracted")

			itinerary, err := decodeItinerary(gjson.Parse(candidate))
			if err != nil {
				return nil, extractionError("extract itinerary", err)
			}
			return itinerary, nil
		}
	}

	return nil, extractionError("extract itinerary", ErrNoPayload)
}

// FencedBlock yields the contents of every ```json fenced block that wraps a
// brace-delimited payload.
func FencedBlock() Strategy {
	return Strategy{
		Name: "fenced_block",
		Candidates: func(raw string) []string {
			var candidates []string
			for _, m := range fencedJSONPattern.FindAllStringSubmatch(raw, -1) {
				candidates = append(candidates, m[1])
			}
			return candidates
		},
	}
}

// BraceScan yields every outermost balanced {...} substring in order of
// appearance, then the span from the first '{' to the last '}'.
func BraceScan() Strategy {
	return Strategy{
		Name: "brace_scan",
		Candidates: func(raw string) []string {
			candidates := balancedObjects(raw)

			first := strings.IndexByte(raw, '{')
			last := strings.LastIndexByte(raw, '}')
			if first >= 0 && last > first {
				span := raw[first : last+1]
				if !slices.Contains(candidates, span) {
					candidates = append(candidates, span)
				}
			}
			return candidates
		},
	}
}

func balancedObjects(s string) []string {
	var objects []string
	for i := 0; i < len(s); {
		start := strings.IndexByte(s[i:], '{')
		if start < 0 {
			break
		}
		start += i

		end := matchingBrace(s, start)
		if end < 0 {
			// unclosed; retry from the next opening brace
			i = start + 1
			continue
		}
		objects = append(objects, s[start:end+1])
		i = end + 1
	}
	return objects
}

// matchingBrace returns the index of the '}' closing the '{' at start,
// ignoring braces inside JSON string literals, or -1.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// decodeItinerary maps a parsed payload onto an Itinerary. Only the nesting
// is enforced; a missing itinerario or servicios list reads as empty.
func decodeItinerary(payload gjson.Result) (*Itinerary, error) {
	if !payload.IsObject() {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedItinerary)
	}

	days := payload.Get("itinerario")
	if !isList(days) {
		return nil, fmt.Errorf("%w: itinerario is not a list", ErrMalformedItinerary)
	}

	itinerary := &Itinerary{
		Itinerario:    []ItineraryDay{},
		EstimadoTotal: payload.Get("estimado_total").Float(),
	}

	for d, day := range days.Array() {
		if !day.IsObject() {
			return nil, fmt.Errorf("%w: itinerario[%d] is not an object", ErrMalformedItinerary, d)
		}
		servicios := day.Get("servicios")
		if !isList(servicios) {
			return nil, fmt.Errorf("%w: itinerario[%d].servicios is not a list", ErrMalformedItinerary, d)
		}

		parsed := ItineraryDay{
			Dia:       int(day.Get("dia").Int()),
			Servicios: []ItineraryService{},
		}
		for i, s := range servicios.Array() {
			if !s.IsObject() {
				return nil, fmt.Errorf("%w: itinerario[%d].servicios[%d] is not an object", ErrMalformedItinerary, d, i)
			}
			parsed.Servicios = append(parsed.Servicios, ItineraryService{
				ID:          int(s.Get("id").Int()),
				Tipo:        s.Get("tipo").String(),
				Descripcion: s.Get("descripcion").String(),
				Precio:      s.Get("precio").Float(),
				IDDestino:   optionalInt(s.Get("idDestino")),
				IDProveedor: optionalInt(s.Get("idProveedor")),
				IDServicio:  optionalInt(s.Get("idServicio")),
			})
		}
		itinerary.Itinerario = append(itinerary.Itinerario, parsed)
	}

	return itinerary, nil
}

// isList accepts arrays and absent or null values
func isList(r gjson.Result) bool {
	return !r.Exists() || r.Type == gjson.Null || r.IsArray()
}

func optionalInt(r gjson.Result) *int {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	v := int(r.Int())
	return &v
}
