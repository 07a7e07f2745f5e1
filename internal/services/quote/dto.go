package quote

// Service is a bookable catalog item offered by the caller
type Service struct {
	ID          int     `json:"id"`
	Tipo        string  `json:"tipo"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	IDDestino   int     `json:"idDestino"`
	IDProveedor int     `json:"idProveedor"`
}

// QuotationRequest represents a POST /cotizar body
type QuotationRequest struct {
	Prompt    *string   `json:"prompt" validate:"required"`
	Servicios []Service `json:"servicios" validate:"required"`
}

// PromptText returns the traveler's ask, or "" when absent
func (r QuotationRequest) PromptText() string {
	if r.Prompt == nil {
		return ""
	}
	return *r.Prompt
}

// ItineraryService is one service scheduled on a day. IDServicio must be the
// id of a Service from the request. The reference ids are nil only in the mock
// itinerary, which carries no catalog; a zero id is a real id and is kept.
type ItineraryService struct {
	ID          int     `json:"id"`
	Tipo        string  `json:"tipo"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	IDDestino   *int    `json:"idDestino,omitempty"`
	IDProveedor *int    `json:"idProveedor,omitempty"`
	IDServicio  *int    `json:"idServicio,omitempty"`
}

// ItineraryDay represents a single day of the plan
type ItineraryDay struct {
	Dia       int                `json:"dia"`
	Servicios []ItineraryService `json:"servicios"`
}

// Itinerary is the day-by-day plan returned to clients
type Itinerary struct {
	Itinerario    []ItineraryDay `json:"itinerario"`
	EstimadoTotal float64        `json:"estimado_total"`
}

// Total sums the price of every scheduled service
func (it *Itinerary) Total() float64 {
	var total float64
	for _, day := range it.Itinerario {
		for _, s := range day.Servicios {
			total += s.Precio
		}
	}
	return total
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Detail string `json:"detail"`
}
