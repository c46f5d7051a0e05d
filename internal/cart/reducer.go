package cart

import "shophub-api/internal/models"

type ActionType string

const (
	ActionAdd         ActionType = "ADD"
	ActionRemove      ActionType = "REMOVE"
	ActionSetQuantity ActionType = "SET_QUANTITY"
	ActionClear       ActionType = "CLEAR"
	ActionLoad        ActionType = "LOAD"
)

// Action is one cart transition. ADD carries the snapshot line to merge or
// append, SET_QUANTITY/REMOVE target a product id, LOAD carries the full
// replacement sequence.
type Action struct {
	Type      ActionType
	Line      models.CartLine
	ProductID int
	Quantity  int
	Lines     []models.CartLine
}

// reduce is the pure transition function over the ordered line sequence.
// It never stores a line with quantity <= 0 and never produces two lines
// sharing a product id. Validation (stock ceilings) happens in the Store
// before an action is dispatched.
func reduce(lines []models.CartLine, action Action) []models.CartLine {
	switch action.Type {
	case ActionAdd:
		next := make([]models.CartLine, len(lines))
		copy(next, lines)
		for i := range next {
			if next[i].ProductID == action.Line.ProductID {
				next[i].Quantity += action.Line.Quantity
				return next
			}
		}
		return append(next, action.Line)

	case ActionRemove:
		next := make([]models.CartLine, 0, len(lines))
		for _, line := range lines {
			if line.ProductID != action.ProductID {
				next = append(next, line)
			}
		}
		return next

	case ActionSetQuantity:
		if action.Quantity <= 0 {
			return reduce(lines, Action{Type: ActionRemove, ProductID: action.ProductID})
		}
		next := make([]models.CartLine, len(lines))
		copy(next, lines)
		for i := range next {
			if next[i].ProductID == action.ProductID {
				next[i].Quantity = action.Quantity
			}
		}
		return next

	case ActionClear:
		return []models.CartLine{}

	case ActionLoad:
		next := make([]models.CartLine, len(action.Lines))
		copy(next, action.Lines)
		return next

	default:
		return lines
	}
}
