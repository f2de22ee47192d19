package indexing

import (
	"strings"

	"github.com/civita/caseflow/core"
)

// SearchableText composes the text embedded for a case: every non-empty
// content field, labeled and joined with " | ". Returns "" when the case
// has no embeddable content, in which case it is left out of the index.
func SearchableText(c *core.Case) string {
	var parts []string

	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	add("Asunto", c.Subject)
	add("Tema principal", c.Category)
	add("Dirección", c.Address)
	add("Barrio", c.Neighborhood)
	add("Comuna", c.Commune)
	add("Tipo de solicitud", c.RequestType)
	add("Peticionario", c.PetitionerName)

	return strings.TrimSpace(strings.Join(parts, " | "))
}
