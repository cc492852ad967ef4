package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/twodo/internal/model"
)

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Search   func(SearchArgs) (Result, error)
	Filter   func(FilterArgs) (Result, error)
	Due      func(DateArgs) (Result, error)
	Remind   func(DateArgs) (Result, error)
	Repeat   func(RepeatArgs) (Result, error)
	Category func(CategoryArgs) (Result, error)
	Priority func(PriorityArgs) (Result, error)
	Tag      func(TagArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		return dispatch("add", handlers.Add, cmd.Add)
	case TypeSearch:
		return dispatch("search", handlers.Search, cmd.Search)
	case TypeFilter:
		return dispatch("filter", handlers.Filter, cmd.Filter)
	case TypeDue:
		return dispatch("due", handlers.Due, cmd.Due)
	case TypeRemind:
		return dispatch("remind", handlers.Remind, cmd.Remind)
	case TypeRepeat:
		return dispatch("repeat", handlers.Repeat, cmd.Repeat)
	case TypeCategory:
		return dispatch("category", handlers.Category, cmd.Category)
	case TypePriority:
		return dispatch("priority", handlers.Priority, cmd.Priority)
	case TypeTag:
		return dispatch("tag", handlers.Tag, cmd.Tag)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func dispatch[A any](name string, handler func(A) (Result, error), args *A) (Result, error) {
	if handler == nil {
		return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
	}
	if args == nil {
		return Result{}, invalid("%s is missing its arguments", name)
	}
	return handler(*args)
}

// ResolveDate turns a date expression into the stored temporal form.
// Presets resolve to 09:00 in now's location. A bare date stays date-only;
// anything with a clock becomes a UTC instant. Clear resolves to "".
func ResolveDate(d DateArgs, now time.Time) (string, error) {
	if d.Clear {
		return "", nil
	}
	expr := strings.ToLower(strings.TrimSpace(d.Expr))
	expr = strings.ReplaceAll(expr, "-", " ")
	for _, p := range model.DatePresets(now) {
		if expr == strings.ToLower(p.Label) {
			return model.FormatTimestamp(p.At), nil
		}
	}

	ts, dateOnly, err := model.ParseTimestamp(strings.TrimSpace(d.Expr), now.Location())
	if err != nil {
		return "", invalid("unrecognized date %q", d.Expr)
	}
	if dateOnly {
		return ts.Format("2006-01-02"), nil
	}
	return model.FormatTimestamp(ts), nil
}
