// Package insight produces an AI-generated summary of an animal's
// medical history via an external text-generation service. The one hard
// rule here is that a request always resolves to a displayable string;
// no failure of the external service ever reaches the caller.
package insight

import (
	"fmt"
	"strings"

	"github.com/ervinoantonio-ui/vetmaster/internal/clinic"
)

// BuildPrompt renders the animal's identity and history into the prompt
// sent to the text-generation service. Output is deterministic for a
// given input: history lines appear in input order, not re-sorted, so
// the same animal and history always produce the same prompt.
func BuildPrompt(animal clinic.Animal, history []clinic.MedicalRecord) string {
	var sb strings.Builder

	sb.WriteString("Você é um assistente veterinário experiente.\n")
	sb.WriteString("Analise o histórico médico do seguinte animal e forneça um breve resumo, ")
	sb.WriteString("alertando sobre possíveis cuidados futuros ou vacinas atrasadas.\n\n")

	fmt.Fprintf(&sb, "Animal: %s (Espécie: %s, Raça: %s)\n", animal.DisplayName(), animal.Species, animal.Breed)

	sb.WriteString("Histórico:\n")
	for _, r := range history {
		fmt.Fprintf(&sb, "- %s: %s - %s: %s\n", r.Date, r.Type, r.Title, r.Description)
	}

	sb.WriteString("\nResponda em Português de forma profissional e concisa.")
	return sb.String()
}
