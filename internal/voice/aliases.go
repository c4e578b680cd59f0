package voice

import (
	"pandapos/internal/models"
)

// Alias maps a canonical menu name to the ways customers tend to say it
type Alias struct {
	Canonical  string
	Variations []string
}

// AliasGroup holds the aliases for one menu category
type AliasGroup struct {
	Category models.MenuCategory
	Aliases  []Alias
}

// DefaultAliases widens matching when a spoken phrase is not an exact menu
// name. Entries whose canonical name is missing from the live menu are
// skipped during resolution.
var DefaultAliases = []AliasGroup{
	{
		Category: models.CategoryEntree,
		Aliases: []Alias{
			{Canonical: "Orange Chicken", Variations: []string{"orange chick", "orang chicken", "range chicken"}},
			{Canonical: "Beijing Beef", Variations: []string{"beijing", "bejing beef", "beige beef"}},
			{Canonical: "Broccoli Beef", Variations: []string{"beef and broccoli", "beef broccoli", "broccoli"}},
			{Canonical: "Kung Pao Chicken", Variations: []string{"kung pao", "kung po chicken", "kung pow chicken", "kungpao chicken"}},
			{Canonical: "Honey Walnut Shrimp", Variations: []string{"walnut shrimp", "honey shrimp", "shrimp"}},
			{Canonical: "Grilled Teriyaki Chicken", Variations: []string{"teriyaki chicken", "teriyaki", "grilled chicken"}},
			{Canonical: "String Bean Chicken Breast", Variations: []string{"string bean chicken", "string beans", "green bean chicken"}},
			{Canonical: "Black Pepper Angus Steak", Variations: []string{"pepper steak", "angus steak", "steak"}},
			{Canonical: "Mushroom Chicken", Variations: []string{"mushroom", "chicken mushroom"}},
			{Canonical: "SweetFire Chicken Breast", Variations: []string{"sweet fire chicken", "sweetfire chicken", "sweet fire"}},
		},
	},
	{
		Category: models.CategorySide,
		Aliases: []Alias{
			{Canonical: "Chow Mein", Variations: []string{"noodles", "chowmein", "chow main", "lo mein"}},
			{Canonical: "Fried Rice", Variations: []string{"fried", "fry rice"}},
			{Canonical: "White Steamed Rice", Variations: []string{"white rice", "steamed rice", "plain rice", "rice"}},
			{Canonical: "Super Greens", Variations: []string{"greens", "vegetables", "veggies", "mixed veggies"}},
		},
	},
	{
		Category: models.CategoryAppetizer,
		Aliases: []Alias{
			{Canonical: "Chicken Egg Roll", Variations: []string{"egg roll", "eggroll", "egg rolls"}},
			{Canonical: "Veggie Spring Roll", Variations: []string{"spring roll", "spring rolls", "vegetable spring roll"}},
			{Canonical: "Cream Cheese Rangoon", Variations: []string{"rangoon", "rangoons", "crab rangoon", "cream cheese wontons"}},
		},
	},
	{
		Category: models.CategoryDrink,
		Aliases: []Alias{
			{Canonical: "Fountain Drink", Variations: []string{"soda", "drink", "pop", "coke", "soft drink"}},
			{Canonical: "Bottled Water", Variations: []string{"water", "bottle of water"}},
			{Canonical: "Apple Juice", Variations: []string{"juice", "apple"}},
		},
	},
}
