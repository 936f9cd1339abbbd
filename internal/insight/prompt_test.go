package insight

import (
	"strings"
	"testing"

	"github.com/ervinoantonio-ui/vetmaster/internal/clinic"
)

// TestBuildPromptDeterministic verifies the same input always yields the
// same prompt, byte for byte.
func TestBuildPromptDeterministic(t *testing.T) {
	animal := clinic.Animal{Name: "Mimosa", Species: clinic.SpeciesBovine, Breed: "Nelore"}
	history := []clinic.MedicalRecord{
		{Date: "2025-03-01", Type: clinic.RecordVaccine, Title: "Aftosa", Description: "dose anual"},
		{Date: "2025-01-10", Type: clinic.RecordProcedure, Title: "Casqueamento", Description: ""},
	}

	first := BuildPrompt(animal, history)
	for i := 0; i < 5; i++ {
		if got := BuildPrompt(animal, history); got != first {
			t.Fatal("BuildPrompt is not deterministic")
		}
	}
}

// TestBuildPromptContents verifies the animal line, the per-record
// lines, and the closing instruction.
func TestBuildPromptContents(t *testing.T) {
	animal := clinic.Animal{Name: "Mimosa", Species: clinic.SpeciesBovine, Breed: "Nelore"}
	history := []clinic.MedicalRecord{
		{Date: "2025-03-01", Type: clinic.RecordVaccine, Title: "Aftosa", Description: "dose anual"},
	}

	prompt := BuildPrompt(animal, history)

	for _, want := range []string{
		"Animal: Mimosa (Espécie: Bovino, Raça: Nelore)",
		"- 2025-03-01: Vaccine - Aftosa: dose anual",
		"Responda em Português de forma profissional e concisa.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

// TestBuildPromptPreservesHistoryOrder verifies records appear in input
// order; the prompt does not re-sort.
func TestBuildPromptPreservesHistoryOrder(t *testing.T) {
	history := []clinic.MedicalRecord{
		{Date: "2025-01-01", Type: clinic.RecordNote, Title: "Primeiro"},
		{Date: "2025-06-01", Type: clinic.RecordNote, Title: "Segundo"},
	}

	prompt := BuildPrompt(clinic.Animal{Name: "Rex"}, history)
	if strings.Index(prompt, "Primeiro") > strings.Index(prompt, "Segundo") {
		t.Error("history lines reordered in prompt")
	}
}

// TestBuildPromptUnnamedAnimal verifies the placeholder name is used for
// animals identified only by number.
func TestBuildPromptUnnamedAnimal(t *testing.T) {
	prompt := BuildPrompt(clinic.Animal{InternalID: "1001", Species: clinic.SpeciesBovine}, nil)
	if !strings.Contains(prompt, "Animal: Sem nome") {
		t.Errorf("prompt missing placeholder name:\n%s", prompt)
	}
}
