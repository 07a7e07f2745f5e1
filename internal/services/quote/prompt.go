package quote

import (
	"fmt"
	"strconv"
	"strings"

	"cotizador/internal/services/llm"
)

const systemPrompt = "Sos un asistente de viajes. Recibís un mensaje del cliente con destino, días, personas y presupuesto. " +
	"Tenés una lista de servicios disponibles (con sus IDs reales de destino, proveedor y servicio). " +
	"Tu tarea es armar un itinerario en formato JSON, donde cada día tenga una lista de servicios como este ejemplo:\n" +
	`{"itinerario": [{"dia": 1, "servicios": [` +
	`{"id": 12, "tipo": "Tour", "descripcion": "Texto", "precio": 12000, "idDestino": 3, "idProveedor": 5, "idServicio": 12}` +
	`]}], "estimado_total": 99999}` + "\n" +
	"Cada servicio debe incluir idDestino, idProveedor e idServicio reales, los cuales ya te fueron proporcionados. No inventes nuevos valores. " +
	"Los IDs deben corresponder a los servicios originales que te pasé; id e idServicio son el mismo valor. No inventes nuevos IDs. " +
	"Devolvé solo el JSON sin comentarios ni explicaciones. No incluyas texto adicional ni markdown, solo el JSON limpio."

// CompletionParams are the fixed model settings used for every request
type CompletionParams struct {
	Model       string
	Temperature float64
}

// BuildContext renders one line per service, in input order. The service id
// is written twice so the model sees it under the ID_Servicio label as well.
func BuildContext(services []Service) string {
	var b strings.Builder
	for _, s := range services {
		fmt.Fprintf(&b,
			"Servicio ID %d | Tipo: %s | Descripción: %s | Precio: $%s | ID_Destino: %d | ID_Proveedor: %d | ID_Servicio: %d\n",
			s.ID, s.Tipo, s.Descripcion, formatPrice(s.Precio), s.IDDestino, s.IDProveedor, s.ID,
		)
	}
	return strings.TrimSpace(b.String())
}

// BuildCompletionRequest combines the instruction template, the catalog
// context and the traveler's prompt.
func BuildCompletionRequest(prompt, context string, params CompletionParams) llm.CompletionRequest {
	return llm.CompletionRequest{
		Model:       params.Model,
		Temperature: params.Temperature,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: context + "\n\nPrompt del cliente: " + prompt},
		},
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
