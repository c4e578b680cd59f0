package voice

import (
	"strings"
)

// commandKeywords are the words that can start a spoken command
var commandKeywords = []string{
	"create", "start", "add", "complete", "finish", "cancel", "checkout",
	"bowl", "plate", "bigger plate", "remove", "delete", "promo", "check out",
}

// ExtractCommand finds the part of a noisy transcript that looks like a
// command. It returns the transcript from the first whole-word keyword on,
// never starting at "and". Failing that, it returns the first keyword found
// anywhere inside the words, scanning keywords in list order, with
// "check out" reported as "checkout".
//
// The result is a hint only: it may still fail full pattern matching.
func ExtractCommand(transcript string) (string, bool) {
	words := strings.Fields(transcript)
	cleaned := make([]string, len(words))
	for i, w := range words {
		cleaned[i] = strings.ToLower(strings.Trim(w, `.,!?;:"'`))
	}

	for i, w := range cleaned {
		if w == "and" {
			continue
		}
		if i+1 < len(cleaned) && isKeyword(w+" "+cleaned[i+1]) {
			return strings.Join(words[i:], " "), true
		}
		if isKeyword(w) {
			return strings.Join(words[i:], " "), true
		}
	}

	kept := make([]string, 0, len(cleaned))
	for _, w := range cleaned {
		if w != "and" {
			kept = append(kept, w)
		}
	}
	joined := strings.Join(kept, " ")

	for _, kw := range commandKeywords {
		if strings.Contains(joined, kw) {
			if kw == "check out" {
				return "checkout", true
			}
			return kw, true
		}
	}

	return "", false
}

func isKeyword(w string) bool {
	for _, kw := range commandKeywords {
		if w == kw {
			return true
		}
	}
	return false
}
