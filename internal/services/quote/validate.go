package quote

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

// IDPolicy decides what happens to itineraries referencing unknown ids
type IDPolicy string

const (
	IDPolicyStrict  IDPolicy = "strict"
	IDPolicyLenient IDPolicy = "lenient"
)

const totalTolerance = 0.005

// ValidateItinerary checks a model-produced itinerary against the catalog it
// was built from. Identifier violations are rejected under IDPolicyStrict and
// only logged under IDPolicyLenient. Missing destination/provider ids are
// filled in from the catalog, and estimado_total is corrected to the sum of
// prices when the model got it wrong.
func ValidateItinerary(it *Itinerary, catalog []Service, policy IDPolicy) error {
	byID := make(map[int]Service, len(catalog))
	for _, s := range catalog {
		byID[s.ID] = s
	}

	var violations []string
	for d := range it.Itinerario {
		day := &it.Itinerario[d]
		if day.Dia < 1 {
			return extractionError("validate itinerary", fmt.Errorf("%w: got %d", ErrInvalidDay, day.Dia))
		}

		for i := range day.Servicios {
			item := &day.Servicios[i]
			violations = append(violations, checkItem(day.Dia, item, byID)...)
		}
	}

	if len(violations) > 0 {
		err := fmt.Errorf("%w: %s", ErrUnknownIdentifier, strings.Join(violations, "; "))
		if policy != IDPolicyLenient {
			return extractionError("validate itinerary", err)
		}
		log.Warn().
			Strs("violations", violations).
			Msg("Itinerary references unknown identifiers, passing through")
	}

	if total := it.Total(); math.Abs(total-it.EstimadoTotal) > totalTolerance {
		log.Warn().
			Float64("estimado_total", it.EstimadoTotal).
			Float64("computed_total", total).
			Msg("Correcting estimado_total to the sum of service prices")
		it.EstimadoTotal = total
	}

	return nil
}

func checkItem(dia int, item *ItineraryService, byID map[int]Service) []string {
	var violations []string

	if _, ok := byID[item.ID]; !ok {
		violations = append(violations, fmt.Sprintf("day %d: id %d", dia, item.ID))
	}

	if item.IDServicio == nil {
		return append(violations, fmt.Sprintf("day %d: missing idServicio", dia))
	}
	entry, ok := byID[*item.IDServicio]
	if !ok {
		return append(violations, fmt.Sprintf("day %d: idServicio %d", dia, *item.IDServicio))
	}

	switch {
	case item.IDDestino == nil:
		item.IDDestino = &entry.IDDestino
	case *item.IDDestino != entry.IDDestino:
		violations = append(violations, fmt.Sprintf("day %d: idDestino %d for servicio %d", dia, *item.IDDestino, entry.ID))
	}

	switch {
	case item.IDProveedor == nil:
		item.IDProveedor = &entry.IDProveedor
	case *item.IDProveedor != entry.IDProveedor:
		violations = append(violations, fmt.Sprintf("day %d: idProveedor %d for servicio %d", dia, *item.IDProveedor, entry.ID))
	}

	if item.Precio != entry.Precio {
		log.Info().
			Int("id_servicio", entry.ID).
			Float64("precio", item.Precio).
			Float64("catalog_precio", entry.Precio).
			Msg("Itinerary price differs from catalog")
	}

	return violations
}
