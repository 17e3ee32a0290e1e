package briefing

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
)

func Greeting(now time.Time) string {
	hour := now.Hour()
	switch {
	case hour >= 5 && hour < 12:
		return "Good Morning"
	case hour >= 12 && hour < 18:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}

// Outfit suggests clothing for the loaded weather.
func Outfit(w *services.WeatherSnapshot) string {
	if w == nil {
		return "Check outside!"
	}
	var rec string
	switch {
	case w.TemperatureC < 10:
		rec = "Wear a heavy jacket, it's cold!"
	case w.TemperatureC < 20:
		rec = "Bring a light jacket or sweater."
	default:
		rec = "T-shirt weather! Stay cool."
	}
	desc := strings.ToLower(w.Description)
	if strings.Contains(desc, "rain") || strings.Contains(desc, "drizzle") {
		rec += " Don't forget an umbrella!"
	}
	return rec
}

var wisdom = []string{
	"The best way to predict the future is to create it.",
	"Small progress is still progress.",
	"Don't watch the clock; do what it does. Keep going.",
	"Your potential is endless.",
	"Focus on being productive instead of busy.",
	"Every day is a fresh start.",
	"Believe you can and you're halfway there.",
}

var funFacts = []string{
	"Honey never spoils. Archaeologists have found pots of honey in ancient Egyptian tombs that are over 3,000 years old and still perfectly edible.",
	"Octopuses have three hearts. Two pump blood to the gills, and one pumps it to the rest of the body.",
	"Bananas are berries, but strawberries aren't.",
	"The Eiffel Tower can be 15 cm taller during the summer due to thermal expansion.",
	"A group of flamingos is called a 'flamboyance'.",
	"Wombat poop is cube-shaped.",
	"The shortest war in history lasted 38 minutes between Britain and Zanzibar on August 27, 1896.",
	"Avocados are a fruit, not a vegetable. They're technically a single-seeded berry, much like a peach.",
	"The unicorn is the national animal of Scotland.",
}

func Wisdom(r *rand.Rand) string  { return wisdom[r.IntN(len(wisdom))] }
func FunFact(r *rand.Rand) string { return funFacts[r.IntN(len(funFacts))] }
