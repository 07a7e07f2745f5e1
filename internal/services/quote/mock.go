package quote

// mockItinerary returns a fresh copy of the fixed example itinerary served in
// mock mode, with its total computed from the service prices.
func mockItinerary() *Itinerary {
	it := &Itinerary{
		Itinerario: []ItineraryDay{
			{
				Dia: 1,
				Servicios: []ItineraryService{
					{ID: 1, Tipo: "Transfer", Descripcion: "Transfer privado al hotel", Precio: 12000},
					{ID: 2, Tipo: "Cena", Descripcion: "Cena romántica", Precio: 15000},
				},
			},
			{
				Dia: 2,
				Servicios: []ItineraryService{
					{ID: 3, Tipo: "Tour", Descripcion: "Excursión de día completo", Precio: 25000},
				},
			},
			{
				Dia: 3,
				Servicios: []ItineraryService{
					{ID: 4, Tipo: "Hotel", Descripcion: "Hotel boutique con desayuno", Precio: 30000},
				},
			},
		},
	}
	it.EstimadoTotal = it.Total()
	return it
}
