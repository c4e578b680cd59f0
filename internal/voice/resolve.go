package voice

import (
	"strings"
	"unicode"

	"pandapos/internal/models"
)

// NormalizeName lowercases s, drops punctuation and collapses whitespace so
// spoken phrases and menu names compare equal.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FindMenuItem resolves a spoken phrase against the live menu. It tries an
// exact normalized name match, then the alias table, then a substring match
// in either direction, and returns false when nothing matches.
func FindMenuItem(phrase string, menu []models.MenuItem, aliases []AliasGroup) (models.MenuItem, bool) {
	spoken := NormalizeName(phrase)
	if spoken == "" {
		return models.MenuItem{}, false
	}

	names := normalizedNames(menu)
	if item, ok := matchNameOrAlias(spoken, menu, names, aliases); ok {
		return item, true
	}

	for i, name := range names {
		if name == "" {
			continue
		}
		if strings.Contains(name, spoken) || strings.Contains(spoken, name) {
			return menu[i], true
		}
	}

	return models.MenuItem{}, false
}

// findNamedItem resolves a phrase by exact name or alias only
func findNamedItem(phrase string, menu []models.MenuItem, aliases []AliasGroup) (models.MenuItem, bool) {
	spoken := NormalizeName(phrase)
	if spoken == "" {
		return models.MenuItem{}, false
	}
	return matchNameOrAlias(spoken, menu, normalizedNames(menu), aliases)
}

func normalizedNames(menu []models.MenuItem) []string {
	names := make([]string, len(menu))
	for i, item := range menu {
		names[i] = NormalizeName(item.Name)
	}
	return names
}

func matchNameOrAlias(spoken string, menu []models.MenuItem, names []string, aliases []AliasGroup) (models.MenuItem, bool) {
	for i, name := range names {
		if name == spoken {
			return menu[i], true
		}
	}

	for _, group := range aliases {
		for _, alias := range group.Aliases {
			if !matchesVariation(spoken, alias.Variations) {
				continue
			}
			canonical := NormalizeName(alias.Canonical)
			for i, name := range names {
				if name == canonical {
					return menu[i], true
				}
			}
		}
	}

	return models.MenuItem{}, false
}

func matchesVariation(spoken string, variations []string) bool {
	for _, v := range variations {
		if NormalizeName(v) == spoken {
			return true
		}
	}
	return false
}

var fillerPrefixes = []string{"me ", "a ", "an ", "one ", "some ", "the ", "order of ", "side of "}

// cleanPhrase removes articles and filler a customer puts before an item name
func cleanPhrase(phrase string) string {
	p := strings.TrimSpace(phrase)
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(p)
		for _, prefix := range fillerPrefixes {
			if strings.HasPrefix(lower, prefix) {
				p = strings.TrimSpace(p[len(prefix):])
				changed = true
				break
			}
		}
	}
	return p
}
