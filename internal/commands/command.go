package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/twodo/internal/model"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeSearch   Type = "search"
	TypeFilter   Type = "filter"
	TypeDue      Type = "due"
	TypeRemind   Type = "remind"
	TypeRepeat   Type = "repeat"
	TypeCategory Type = "category"
	TypePriority Type = "priority"
	TypeTag      Type = "tag"
)

// Types lists the palette commands in help order.
var Types = []Type{TypeAdd, TypeSearch, TypeFilter, TypeDue, TypeRemind, TypeRepeat, TypeCategory, TypePriority, TypeTag}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Title string
}

// SearchArgs with empty Text clears the search.
type SearchArgs struct {
	Text string
}

type FilterArgs struct {
	Name string
}

// DateArgs carries an unresolved date expression; see ResolveDate. Clear is
// set for "none", "clear" and "off".
type DateArgs struct {
	Expr  string
	Clear bool
}

// RepeatArgs with a nil Rule removes the recurrence.
type RepeatArgs struct {
	Rule *model.RecurrenceRule
}

type CategoryAction string

const (
	CategoryAdd    CategoryAction = "add"
	CategoryRename CategoryAction = "rename"
	CategoryDelete CategoryAction = "delete"
	CategoryAssign CategoryAction = "set"
)

type CategoryArgs struct {
	Action CategoryAction
	Key    string
	Label  string
}

type PriorityArgs struct {
	Level model.PriorityLevel
}

type TagArgs struct {
	Tag string
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Search   *SearchArgs
	Filter   *FilterArgs
	Due      *DateArgs
	Remind   *DateArgs
	Repeat   *RepeatArgs
	Category *CategoryArgs
	Priority *PriorityArgs
	Tag      *TagArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeSearch:
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Text: strings.Join(args, " ")}}, nil
	case TypeFilter:
		return parseFilter(input, args)
	case TypeDue:
		d, err := parseDate("due", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeDue, Raw: input, Due: &d}, nil
	case TypeRemind:
		d, err := parseDate("remind", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeRemind, Raw: input, Remind: &d}, nil
	case TypeRepeat:
		return parseRepeat(input, args)
	case TypeCategory:
		return parseCategory(input, args)
	case TypePriority:
		return parsePriority(input, args)
	case TypeTag:
		return parseTag(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("filter requires a filter or category name")
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Name: strings.Join(args, " ")}}, nil
}

func parseDate(name string, args []string) (DateArgs, error) {
	if len(args) == 0 {
		return DateArgs{}, invalid("%s requires a date, e.g. today, tomorrow, next-week or 2024-06-15 09:00", name)
	}
	expr := strings.Join(args, " ")
	switch strings.ToLower(expr) {
	case "none", "clear", "off":
		return DateArgs{Clear: true}, nil
	}
	return DateArgs{Expr: expr}, nil
}

func parseRepeat(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("repeat requires a rule, e.g. daily, mon wed or every 2 weeks tue thu")
	}
	rule, clear, err := ParseRepeatRule(strings.Join(args, " "))
	if err != nil {
		return Command{}, err
	}
	if clear {
		return Command{Type: TypeRepeat, Raw: raw, Repeat: &RepeatArgs{}}, nil
	}
	return Command{Type: TypeRepeat, Raw: raw, Repeat: &RepeatArgs{Rule: &rule}}, nil
}

// ParseRepeatRule reads a period name, a weekday list, "weekdays", or
// "every N unit [on] [days...]". clear is true for none, never and off.
func ParseRepeatRule(expr string) (rule model.RecurrenceRule, clear bool, err error) {
	fields := strings.Fields(strings.ToLower(strings.ReplaceAll(expr, ",", " ")))
	if len(fields) == 0 {
		return model.RecurrenceRule{}, false, invalid("empty repeat rule")
	}
	switch fields[0] {
	case "none", "never", "off":
		return model.RecurrenceRule{}, true, nil
	case "weekdays":
		return model.WeekdayRule(model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday), false, nil
	case "every":
		return parseEvery(fields[1:])
	}
	if len(fields) == 1 {
		if p, ok := parsePeriod(fields[0]); ok {
			return model.PeriodRule(p), false, nil
		}
	}
	days, err := parseWeekdays(fields)
	if err != nil {
		return model.RecurrenceRule{}, false, err
	}
	return model.WeekdayRule(days...), false, nil
}

func parseEvery(fields []string) (model.RecurrenceRule, bool, error) {
	if len(fields) < 2 {
		return model.RecurrenceRule{}, false, invalid("every requires a count and a unit")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 {
		return model.RecurrenceRule{}, false, invalid("invalid interval %q", fields[0])
	}
	unit := model.RecurrenceUnit(strings.TrimSuffix(fields[1], "s") + "s")
	if !unit.IsValid() {
		return model.RecurrenceRule{}, false, invalid("invalid unit %q", fields[1])
	}
	rest := fields[2:]
	if len(rest) > 0 && rest[0] == "on" {
		rest = rest[1:]
	}
	var days []model.Weekday
	if len(rest) > 0 {
		days, err = parseWeekdays(rest)
		if err != nil {
			return model.RecurrenceRule{}, false, err
		}
	}
	rule := model.CustomRule(n, unit, days...)
	if err := rule.Validate(); err != nil {
		return model.RecurrenceRule{}, false, invalid("%v", err)
	}
	return rule, false, nil
}

func parsePeriod(s string) (model.Period, bool) {
	if s == "biweekly" {
		return model.PeriodBiweekly, true
	}
	for _, p := range model.Periods {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}

func parseWeekdays(fields []string) ([]model.Weekday, error) {
	days := make([]model.Weekday, 0, len(fields))
	for _, f := range fields {
		if f == "and" || f == "&" {
			continue
		}
		d, ok := ParseWeekday(f)
		if !ok {
			return nil, invalid("unknown weekday %q", f)
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, invalid("no weekdays given")
	}
	return days, nil
}

// ParseWeekday accepts a full English day name or any prefix of at least
// three letters.
func ParseWeekday(s string) (model.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for d := model.Monday; d <= model.Sunday; d++ {
		if strings.HasPrefix(strings.ToLower(d.String()), s) {
			return d, true
		}
	}
	return 0, false
}

func parseCategory(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("category requires add <name>, rename <key> <name>, delete <key> or set <key>")
	}
	action := CategoryAction(strings.ToLower(args[0]))
	rest := args[1:]
	switch action {
	case CategoryAdd:
		return Command{Type: TypeCategory, Raw: raw, Category: &CategoryArgs{Action: action, Label: strings.Join(rest, " ")}}, nil
	case CategoryRename:
		if len(rest) < 2 {
			return Command{}, invalid("category rename requires a key and a new name")
		}
		return Command{Type: TypeCategory, Raw: raw, Category: &CategoryArgs{Action: action, Key: strings.ToLower(rest[0]), Label: strings.Join(rest[1:], " ")}}, nil
	case CategoryDelete, CategoryAssign:
		return Command{Type: TypeCategory, Raw: raw, Category: &CategoryArgs{Action: action, Key: model.CategoryKey(strings.Join(rest, " "))}}, nil
	default:
		return Command{}, invalid("unknown category action %q", args[0])
	}
}

func parsePriority(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("priority requires one of low, medium, high, critical")
	}
	level, ok := model.ParsePriorityLevel(args[0])
	if !ok {
		return Command{}, invalid("unknown priority %q", args[0])
	}
	return Command{Type: TypePriority, Raw: raw, Priority: &PriorityArgs{Level: level}}, nil
}

func parseTag(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("tag requires a single tag")
	}
	tag := strings.TrimPrefix(args[0], "#")
	if tag == "" {
		return Command{}, invalid("tag requires a single tag")
	}
	return Command{Type: TypeTag, Raw: raw, Tag: &TagArgs{Tag: tag}}, nil
}
