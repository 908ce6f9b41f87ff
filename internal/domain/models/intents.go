package models

import (
	"strconv"
	"strings"
)

// IntentType enumerates the cart actions a user can request.
type IntentType string

const (
	IntentAdd      IntentType = "add"
	IntentIncrease IntentType = "increase"
	IntentDecrease IntentType = "decrease"
	IntentRemove   IntentType = "remove"
	IntentClear    IntentType = "clear"
	IntentUnknown  IntentType = "unknown"
)

// Intent is a named user action routed to the cart state manager.
type Intent struct {
	Type      IntentType `json:"intent" form:"intent"`
	ProductID string     `json:"id" form:"id"`
	Quantity  int        `json:"qty" form:"qty"`
}

// NormalizeIntentType maps free-form intent names onto the supported set.
func NormalizeIntentType(name string) IntentType {
	head := strings.TrimPrefix(strings.TrimSpace(strings.ToLower(name)), "/")
	switch head {
	case string(IntentAdd):
		return IntentAdd
	case string(IntentIncrease), "inc", "+":
		return IntentIncrease
	case string(IntentDecrease), "dec", "-":
		return IntentDecrease
	case string(IntentRemove), "delete":
		return IntentRemove
	case string(IntentClear):
		return IntentClear
	default:
		return IntentUnknown
	}
}

// ParseIntent derives an Intent from text such as "add p1 2" or "/remove p1".
func ParseIntent(message string) Intent {
	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return Intent{Type: IntentUnknown}
	}

	intent := Intent{Type: NormalizeIntentType(tokens[0])}
	if len(tokens) > 1 {
		intent.ProductID = tokens[1]
	}
	if len(tokens) > 2 {
		if qty, err := strconv.Atoi(tokens[2]); err == nil {
			intent.Quantity = qty
		}
	}

	return intent
}
