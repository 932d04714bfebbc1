// Package mock provides a deterministic offline provider used as the last
// link of the provider chain and in tests
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ayurwell/portal/internal/ports/outbound"
)

// Provider answers every prompt from fixed templates
type Provider struct{}

var _ outbound.AIProvider = Provider{}

// New creates the mock provider
func New() Provider { return Provider{} }

// Name returns the provider name
func (Provider) Name() string { return "mock" }

// HealthCheck always succeeds
func (Provider) HealthCheck(ctx context.Context) error { return nil }

// Generate recognises which flow the prompt belongs to by the output
// schema it asks for
func (p Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var out interface{}
	if strings.Contains(prompt, "alternativeMeals") {
		out = alternatives(prompt)
	} else {
		out = dietPlan(prompt)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type item struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type meal struct {
	Name  string `json:"name"`
	Items []item `json:"items"`
}

type day struct {
	Day   int    `json:"day"`
	Meals []meal `json:"meals"`
}

type menu struct {
	breakfast, lunch, dinner item
}

var menus = map[string][]menu{
	"vata": {
		{item{"Warm oatmeal with ghee and dates", "Grounding, moist and easy to digest"}, item{"Moong dal khichdi", "Warm one-pot meal with cumin and ginger"}, item{"Root vegetable stew", "Sweet potato and carrot with warming spices"}},
		{item{"Stewed apples with cinnamon", "Soft cooked fruit for a gentle start"}, item{"Basmati rice with sambar", "Well-cooked lentils with tamarind"}, item{"Rice noodle soup", "Light broth with ginger and greens"}},
		{item{"Rice porridge with cardamom", "Creamy and warming"}, item{"Quinoa with roasted squash", "Tossed in sesame oil"}, item{"Mung bean soup", "Spiced with turmeric and cumin"}},
	},
	"pitta": {
		{item{"Coconut rice flakes", "Cooling poha with coriander"}, item{"Basmati rice with cucumber raita", "Cooling yogurt side with mint"}, item{"Zucchini and mung dal", "Lightly spiced with fennel"}},
		{item{"Sweet pear and soaked almonds", "Cooling fruit with soaked nuts"}, item{"Barley and vegetable pilaf", "Asparagus, peas and coriander"}, item{"Green bean and potato curry", "Mild coconut milk base"}},
		{item{"Oat porridge with maple", "Made with cooling coconut milk"}, item{"Chickpea salad with greens", "Dressed with lime and olive oil"}, item{"Rice with bottle gourd dal", "Mild and cooling"}},
	},
	"kapha": {
		{item{"Spiced millet porridge", "Light and warming with ginger"}, item{"Barley and vegetable soup", "Loaded with leafy greens"}, item{"Steamed greens with tofu", "Black pepper and mustard seed"}},
		{item{"Baked apple with cloves", "Light fruit breakfast"}, item{"Buckwheat with sauteed vegetables", "Warming spices, little oil"}, item{"Red lentil soup", "Thin and peppery"}},
		{item{"Ginger tea and puffed amaranth", "Stimulating and light"}, item{"Quinoa with roasted cauliflower", "Turmeric and cumin"}, item{"Clear vegetable broth", "With a squeeze of lemon"}},
	},
}

func dietPlan(prompt string) map[string]interface{} {
	dosha := dominantDosha(prompt)
	templates := menus[dosha]

	days := make([]day, 0, 7)
	for n := 1; n <= 7; n++ {
		m := templates[(n-1)%len(templates)]
		days = append(days, day{
			Day: n,
			Meals: []meal{
				{Name: "Breakfast", Items: []item{m.breakfast}},
				{Name: "Lunch", Items: []item{m.lunch}},
				{Name: "Dinner", Items: []item{m.dinner}},
			},
		})
	}

	return map[string]interface{}{
		"dietPlan": map[string]interface{}{
			"title": fmt.Sprintf("%s balancing plan", capitalize(dosha)),
			"plan":  days,
			"notes": "Offline template. Eat at regular times, favour freshly cooked food and sip warm water through the day.",
		},
	}
}

func alternatives(prompt string) map[string]interface{} {
	ingredients := splitList(field(prompt, "Available Ingredients:"))
	current := field(prompt, "Current Meal:")
	if len(ingredients) == 0 {
		ingredients = []string{"seasonal vegetables"}
	}

	meals := []string{
		fmt.Sprintf("Warm %s stir-fry with cumin and ginger", strings.Join(first(ingredients, 2), " and ")),
		fmt.Sprintf("%s soup with fresh coriander", capitalize(ingredients[0])),
		fmt.Sprintf("Kitchari made with %s", strings.Join(first(ingredients, 3), ", ")),
	}

	reasoning := "These options use what you have on hand and are cooked and warm, which is easier to digest."
	if current != "" {
		reasoning = fmt.Sprintf("Instead of %s, these options use what you have on hand and are cooked and warm, which is easier to digest.", current)
	}

	return map[string]interface{}{
		"alternativeMeals": meals,
		"reasoning":        reasoning,
	}
}

func dominantDosha(prompt string) string {
	const label = "dosha imbalance:"
	lower := strings.ToLower(prompt)
	if i := strings.Index(lower, label); i >= 0 {
		if words := strings.Fields(lower[i+len(label):]); len(words) > 0 {
			lower = strings.Trim(words[0], ",.")
		}
	}
	for _, d := range []string{"vata", "pitta", "kapha"} {
		if strings.Contains(lower, d) {
			return d
		}
	}
	return "vata"
}

// field returns the rest of the first line starting with label
func field(prompt, label string) string {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, label); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func first(list []string, n int) []string {
	if len(list) < n {
		return list
	}
	return list[:n]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
