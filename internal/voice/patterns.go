package voice

import (
	"regexp"
)

// Action names a recognised ordering command
type Action string

const (
	ActionStartMeal    Action = "start_meal"
	ActionAddItems     Action = "add_items"
	ActionCompleteMeal Action = "complete_meal"
	ActionCancelMeal   Action = "cancel_meal"
	ActionCheckout     Action = "checkout"
	ActionApplyPromo   Action = "apply_promo"
)

// CommandPattern is one rule of the voice grammar: a match rule, the action
// it triggers and an example phrase shown to users.
type CommandPattern struct {
	Action  Action
	Match   *regexp.Regexp
	Example string
}

// Patterns are tried in order and the first match wins, so the general "add"
// rule comes last. Matching is case-insensitive against the trimmed
// transcript so captured promo codes keep their case.
var commandPatterns = []CommandPattern{
	{
		Action:  ActionStartMeal,
		Match:   regexp.MustCompile(`(?i)^(?:create|start|make|begin|new|order)\s+(?:me\s+)?(?:a\s+|an\s+)?(?:new\s+)?(bigger\s+plate|plate|bowl)(?:\s+meal)?$`),
		Example: "create a bowl",
	},
	{
		Action:  ActionCompleteMeal,
		Match:   regexp.MustCompile(`(?i)^(?:complete|finish|finalize|done)(?:\s+with)?(?:\s+(?:the|my|this))?(?:\s+(?:meal|bowl|bigger\s+plate|plate))?$`),
		Example: "complete meal",
	},
	{
		Action:  ActionCancelMeal,
		Match:   regexp.MustCompile(`(?i)^(?:cancel|remove|delete|discard|clear)(?:\s+(?:the|my|this|current))*(?:\s+(?:meal|bowl|bigger\s+plate|plate))?$`),
		Example: "cancel meal",
	},
	{
		Action:  ActionCheckout,
		Match:   regexp.MustCompile(`(?i)^(?:check\s*out|pay(?:\s+now)?|place\s+(?:my\s+|the\s+)?order|that'?s\s+all)(?:\s+now)?$`),
		Example: "checkout",
	},
	{
		Action:  ActionApplyPromo,
		Match:   regexp.MustCompile(`(?i)^(?:apply\s+|use\s+)?(?:the\s+|a\s+|my\s+)?promo(?:tion)?(?:\s+code)?\s+([a-z0-9-]+)$`),
		Example: "promo code PANDA20",
	},
	{
		Action:  ActionAddItems,
		Match:   regexp.MustCompile(`(?i)^(?:add|get|i\s+want|i'?d\s+like|give\s+me|can\s+i\s+(?:get|have)|i'?ll\s+(?:have|take))\s+(.+?)(?:\s+and\s+(.+))?$`),
		Example: "add orange chicken and chow mein",
	},
}

// courtesy strips filler the grammar does not care about
var courtesy = regexp.MustCompile(`(?i)^(?:please\s+)|(?:[\s,]+please)|[\s.!?]+$`)

// Examples returns the example phrase of every command pattern in order
func Examples() []string {
	examples := make([]string, len(commandPatterns))
	for i, p := range commandPatterns {
		examples[i] = p.Example
	}
	return examples
}
