package topic

import "strings"

// Topic is the name of an event, e.g. "items:changed" or "order.address:change".
type Topic string

// Separators and wildcards used by topic names and glob patterns.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator splits the subject into dotted segments.
	Separator = "."

	// ActionSeparator splits the subject from the action.
	ActionSeparator = ":"
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Subject returns the part before the action separator.
//
// Example: "order.address:change" -> "order.address"
func (t Topic) Subject() string {
	s := string(t)
	if idx := strings.LastIndex(s, ActionSeparator); idx >= 0 {
		return s[:idx]
	}
	return s
}

// Action returns the part after the action separator, or "" if there is none.
//
// Example: "order.address:change" -> "change"
func (t Topic) Action() string {
	s := string(t)
	if idx := strings.LastIndex(s, ActionSeparator); idx >= 0 {
		return s[idx+1:]
	}
	return ""
}

// Field returns the dotted field segment of a form field topic.
//
// Example: "contacts.email:change" -> "email"
func (t Topic) Field() string {
	subject := t.Subject()
	idx := strings.Index(subject, Separator)
	if idx < 0 {
		return ""
	}
	return subject[idx+1:]
}

// Segments returns the topic split by the segment separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsValid returns true if the topic is non-empty and contains no blank
// segments or whitespace.
func (t Topic) IsValid() bool {
	s := string(t)
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches returns true if this topic matches the given glob pattern.
// The pattern may contain wildcards:
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

// matchSegments performs recursive pattern matching on topic segments.
func matchSegments(topic, pattern []string) bool {
	ti, pi := 0, 0

	for pi < len(pattern) {
		if pattern[pi] == WildcardMulti {
			for ti <= len(topic) {
				if matchSegments(topic[ti:], pattern[pi+1:]) {
					return true
				}
				ti++
			}
			return false
		}

		if ti >= len(topic) {
			return false
		}

		if pattern[pi] != WildcardSingle && pattern[pi] != topic[ti] {
			return false
		}
		ti++
		pi++
	}

	return ti == len(topic)
}

// FieldChange builds the topic a form emits when one of its fields changes.
//
// Example: FieldChange("order", "address") -> "order.address:change"
func FieldChange(form, field string) Topic {
	return Topic(form + Separator + field + ActionSeparator + "change")
}
