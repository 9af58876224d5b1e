package protocol

import (
	"strconv"
	"strings"
)

// Event is a decoded system event: an opcode plus positional arguments.
type Event struct {
	Opcode string
	Args   []string
}

// Decode splits a system event's text into an opcode and arguments.
// It returns false for empty input; it never fails otherwise, since
// unknown opcodes are the router's problem, not the decoder's.
func Decode(text string) (Event, bool) {
	if text == "" {
		return Event{}, false
	}

	parts := strings.Split(text, "\n")

	return Event{Opcode: parts[0], Args: parts[1:]}, true
}

// Arg returns the i-th argument, or "" when out of range.
func (e Event) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return e.Args[i]
}

// Int parses the i-th argument as a base-10 integer.
func (e Event) Int(i int) (int, bool) {
	n, err := strconv.Atoi(e.Arg(i))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IntOr parses the i-th argument, falling back to def when absent or malformed.
func (e Event) IntOr(i, def int) int {
	if n, ok := e.Int(i); ok {
		return n
	}
	return def
}

// Plus reports whether the i-th argument is the '+' flag literal.
func (e Event) Plus(i int) bool {
	return e.Arg(i) == "+"
}

// Flag renders a boolean as the protocol's '+'/'-' literal.
func Flag(v bool) string {
	if v {
		return "+"
	}
	return "-"
}

// Itoa is a shorthand used when building outbound argument lists.
func Itoa(n int) string {
	return strconv.Itoa(n)
}

// UnescapeNewLines reverses the protocol's newline escaping inside a
// single argument (arguments themselves are newline-separated).
func UnescapeNewLines(value string) string {
	value = strings.ReplaceAll(value, `\n`, "\n")
	return strings.ReplaceAll(value, `\\`, `\`)
}
