package topic

import (
	"fmt"
	"regexp"
)

// Selector decides whether a subscription receives an event.
type Selector interface {
	// Match reports whether the event topic is selected.
	Match(t Topic) bool

	// String describes the selector for logs.
	String() string
}

// Match implements Selector; a Topic selects only itself.
func (t Topic) Match(other Topic) bool {
	return t == other
}

// IsExact reports whether the selector is a plain topic name.
func IsExact(s Selector) (Topic, bool) {
	t, ok := s.(Topic)
	return t, ok
}

type regexpSelector struct {
	re *regexp.Regexp
}

// Regexp compiles expr into a selector that matches topics containing a
// match of the expression. Anchor the expression to match whole names.
func Regexp(expr string) (Selector, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile topic pattern %q: %w", expr, err)
	}
	return regexpSelector{re: re}, nil
}

// MustRegexp is like Regexp but panics on an invalid expression.
func MustRegexp(expr string) Selector {
	s, err := Regexp(expr)
	if err != nil {
		panic(err)
	}
	return s
}

func (s regexpSelector) Match(t Topic) bool { return s.re.MatchString(string(t)) }
func (s regexpSelector) String() string     { return "/" + s.re.String() + "/" }

type globSelector struct {
	pattern Topic
}

// Glob returns a selector matching dot-separated segments with * and **.
func Glob(pattern string) Selector {
	return globSelector{pattern: Topic(pattern)}
}

func (s globSelector) Match(t Topic) bool { return t.Matches(s.pattern) }
func (s globSelector) String() string     { return "glob:" + string(s.pattern) }

type funcSelector struct {
	name string
	fn   func(Topic) bool
}

// Func wraps a predicate as a selector. The name is only used in logs.
func Func(name string, fn func(Topic) bool) Selector {
	return funcSelector{name: name, fn: fn}
}

func (s funcSelector) Match(t Topic) bool { return s.fn != nil && s.fn(t) }
func (s funcSelector) String() string     { return "func:" + s.name }

// Any selects every topic.
func Any() Selector {
	return funcSelector{name: "*", fn: func(Topic) bool { return true }}
}
