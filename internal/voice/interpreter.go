// Package voice turns spoken ordering transcripts into calls on an ordering
// session: start a meal, add items, complete or cancel the meal, apply a
// promo code and check out.
package voice

import (
	"strings"

	"pandapos/internal/meal"
	"pandapos/internal/models"
)

// Handlers receives the interpreted commands. Implementations mutate the
// surrounding ordering state; any error they return is passed back to the
// caller of Interpret.
type Handlers interface {
	StartNewMeal(size meal.Size) error
	AddSimpleItem(item models.MenuItem) error
	HandleMealUpdate(item models.MenuItem) error
	CompleteMeal() error
	CancelMeal() error
	HandleCheckout() error
	ValidatePromoCode(code string) error
}

// Command describes what a transcript was interpreted as
type Command struct {
	Action     Action            `json:"action"`
	Transcript string            `json:"transcript"`
	Size       meal.Size         `json:"size,omitempty"`
	Items      []models.MenuItem `json:"items,omitempty"`
	PromoCode  string            `json:"promo_code,omitempty"`
}

// Interpreter holds the per-session voice state: the menu snapshot, whether
// a meal is being built and the transcript history. It is not safe for
// concurrent use; each ordering session owns one.
type Interpreter struct {
	handlers       Handlers
	patterns       []CommandPattern
	aliases        []AliasGroup
	menu           []models.MenuItem
	mealInProgress bool
	history        *History
}

// NewInterpreter creates an interpreter dispatching to handlers
func NewInterpreter(handlers Handlers) *Interpreter {
	return &Interpreter{
		handlers: handlers,
		patterns: commandPatterns,
		aliases:  DefaultAliases,
		history:  NewHistory(MaxHistory),
	}
}

// UpdateMenu replaces the menu snapshot used to resolve item names
func (in *Interpreter) UpdateMenu(menu []models.MenuItem) {
	in.menu = append([]models.MenuItem(nil), menu...)
}

// SetMealInProgress tells the interpreter whether added entrées and sides
// belong to a meal being built
func (in *Interpreter) SetMealInProgress(active bool) {
	in.mealInProgress = active
}

// MealInProgress reports the interpreter's view of the current meal
func (in *Interpreter) MealInProgress() bool {
	return in.mealInProgress
}

// History returns the processed transcripts, most recent first
func (in *Interpreter) History() []string {
	return in.history.Entries()
}

// Interpret handles one final transcript. The full transcript is matched
// first; if no pattern fits, the keyword hint from ExtractCommand is tried.
// Exactly one handler path runs per recognised command.
func (in *Interpreter) Interpret(transcript string) (Command, error) {
	trimmed := strings.TrimSpace(transcript)
	normalized := strings.ToLower(trimmed)
	in.history.Add(normalized)

	text := stripCourtesy(trimmed)
	if p, groups, ok := in.match(text); ok {
		return in.dispatch(p, groups, normalized)
	}

	if hint, ok := ExtractCommand(text); ok {
		hint = stripCourtesy(hint)
		if !strings.EqualFold(hint, text) {
			if p, groups, ok := in.match(hint); ok {
				return in.dispatch(p, groups, normalized)
			}
		}
	}

	return Command{}, &UnrecognizedCommandError{Transcript: normalized, Examples: Examples()}
}

func stripCourtesy(s string) string {
	return strings.TrimSpace(courtesy.ReplaceAllString(s, ""))
}

func (in *Interpreter) match(text string) (CommandPattern, []string, bool) {
	for _, p := range in.patterns {
		if groups := p.Match.FindStringSubmatch(text); groups != nil {
			return p, groups[1:], true
		}
	}
	return CommandPattern{}, nil, false
}

func (in *Interpreter) dispatch(p CommandPattern, groups []string, normalized string) (Command, error) {
	cmd := Command{Action: p.Action, Transcript: normalized}

	var err error
	switch p.Action {
	case ActionStartMeal:
		cmd.Size, err = in.startMeal(groups[0])
	case ActionAddItems:
		cmd.Items, err = in.addItems(groups)
	case ActionCompleteMeal:
		err = in.handlerErr(p.Action, in.handlers.CompleteMeal())
		if err == nil {
			in.mealInProgress = false
		}
	case ActionCancelMeal:
		err = in.handlerErr(p.Action, in.handlers.CancelMeal())
		if err == nil {
			in.mealInProgress = false
		}
	case ActionCheckout:
		err = in.handlerErr(p.Action, in.handlers.HandleCheckout())
		if err == nil {
			in.mealInProgress = false
		}
	case ActionApplyPromo:
		cmd.PromoCode = strings.TrimSpace(groups[0])
		err = in.handlerErr(p.Action, in.handlers.ValidatePromoCode(cmd.PromoCode))
	}

	return cmd, err
}

func (in *Interpreter) startMeal(spoken string) (meal.Size, error) {
	size, ok := meal.ParseSize(spoken)
	if !ok {
		size = meal.SizeBowl
	}
	if err := in.handlers.StartNewMeal(size); err != nil {
		return size, in.handlerErr(ActionStartMeal, err)
	}
	in.mealInProgress = true
	return size, nil
}

// addItems resolves every phrase before dispatching so an unknown second
// item does not leave the first one half-applied. A capture split on "and"
// is first tried whole against names and aliases, so "beef and broccoli"
// stays one item.
func (in *Interpreter) addItems(groups []string) ([]models.MenuItem, error) {
	if len(groups) == 2 && strings.TrimSpace(groups[1]) != "" {
		whole := cleanPhrase(groups[0] + " and " + groups[1])
		if item, ok := findNamedItem(whole, in.menu, in.aliases); ok {
			return in.dispatchItems([]models.MenuItem{item})
		}
	}

	items := make([]models.MenuItem, 0, len(groups))
	for _, g := range groups {
		phrase := cleanPhrase(g)
		if phrase == "" {
			continue
		}
		item, ok := FindMenuItem(phrase, in.menu, in.aliases)
		if !ok {
			return nil, &ItemNotFoundError{Phrase: phrase}
		}
		items = append(items, item)
	}
	return in.dispatchItems(items)
}

func (in *Interpreter) dispatchItems(items []models.MenuItem) ([]models.MenuItem, error) {
	for _, item := range items {
		var err error
		if in.mealInProgress && item.IsMealComponent() {
			err = in.handlers.HandleMealUpdate(item)
		} else {
			err = in.handlers.AddSimpleItem(item)
		}
		if err != nil {
			return items, in.handlerErr(ActionAddItems, err)
		}
	}
	return items, nil
}

func (in *Interpreter) handlerErr(action Action, err error) error {
	if err == nil {
		return nil
	}
	return &HandlerError{Action: action, Err: err}
}
