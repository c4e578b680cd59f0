package meal

import (
	"math"
	"strings"
)

// Pricing holds the base price per size and the surcharge per premium entrée
type Pricing struct {
	Base             map[Size]float64 `yaml:"base"`
	PremiumSurcharge float64          `yaml:"premium_surcharge"`
}

// DefaultPricing is used when the configuration leaves pricing empty
func DefaultPricing() Pricing {
	return Pricing{
		Base: map[Size]float64{
			SizeBowl:        8.30,
			SizePlate:       9.80,
			SizeBiggerPlate: 11.30,
		},
		PremiumSurcharge: 1.50,
	}
}

// Price returns the meal's price: the size's base price plus a surcharge for
// every premium entrée.
func (m Meal) Price(p Pricing) float64 {
	total := p.Base[m.Size]
	for _, e := range m.entreeSlots() {
		if e != nil && e.Premium {
			total += p.PremiumSurcharge
		}
	}
	return math.Round(total*100) / 100
}

// Name is the display name of the meal, e.g. "Bigger Plate"
func (m Meal) Name() string {
	words := strings.Fields(string(m.Size))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func normalizeSize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
