package ai

import (
	"fmt"
	"strings"

	"github.com/ayurwell/portal/internal/ports/inbound"
)

const dietPlanInstructions = "You are an expert Ayurvedic dietitian. Generate an initial diet plan for the patient " +
	"based on their profile and any constraints. Incorporate both Ayurvedic principles and modern " +
	"nutritional analysis. The output must be a structured JSON object."

const dietPlanSchema = `{"dietPlan": {"title": string, "plan": [{"day": integer starting at 1, "meals": [{"name": string, "items": [{"name": string, "description": string}]}]}], "notes": string}}`

const mealAlternativesIntro = "You are an AI assistant specialized in Ayurvedic diet planning. " +
	"A patient wants to replace their current meal with an alternative."

const mealAlternativesTask = "Suggest alternative meals that are doctor-approved, suitable for the patient's " +
	"profile, and use the available ingredients while respecting their dietary restrictions. Explain why " +
	"the suggested meals are good alternatives based on the patient's Ayurvedic needs and available " +
	"ingredients in the reasoning field. Return a list of suggested alternative meals."

const mealAlternativesSchema = `{"alternativeMeals": [string], "reasoning": string}`

// buildDietPlanPrompt renders the generateInitialDietPlan prompt. Each input
// sits on its own labelled line.
func buildDietPlanPrompt(in inbound.DietPlanInput) string {
	var prompt strings.Builder

	prompt.WriteString(dietPlanInstructions)
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf("Patient Profile: %s\n", oneLine(in.PatientProfile)))
	prompt.WriteString(fmt.Sprintf("Constraints: %s\n", oneLine(in.Constraints)))
	prompt.WriteString("\nRespond with JSON only, matching this shape:\n")
	prompt.WriteString(dietPlanSchema)
	prompt.WriteString("\n")

	return prompt.String()
}

// buildMealAlternativesPrompt renders the suggestAlternativeMeals prompt
func buildMealAlternativesPrompt(in inbound.MealAlternativesInput) string {
	restrictions := oneLine(in.DietaryRestrictions)
	if restrictions == "" {
		restrictions = "None"
	}

	var prompt strings.Builder

	prompt.WriteString(mealAlternativesIntro)
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf("Patient Profile: %s\n", oneLine(in.PatientProfile)))
	prompt.WriteString(fmt.Sprintf("Current Meal: %s\n", oneLine(in.CurrentMeal)))
	prompt.WriteString(fmt.Sprintf("Available Ingredients: %s\n", oneLine(in.AvailableIngredients)))
	prompt.WriteString(fmt.Sprintf("Dietary Restrictions: %s\n", restrictions))
	prompt.WriteString("\n")
	prompt.WriteString(mealAlternativesTask)
	prompt.WriteString("\nRespond with JSON only, matching this shape:\n")
	prompt.WriteString(mealAlternativesSchema)
	prompt.WriteString("\n")

	return prompt.String()
}

// oneLine keeps user text from starting new labelled lines
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
