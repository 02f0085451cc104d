package prismic

import (
	"strconv"
	"strings"
)

// Predicate is one clause of a repository query.
type Predicate interface {
	Q() string
}

type atPredicate struct {
	fragment string
	value    string
}

func (p atPredicate) Q() string {
	return "[:d = at(" + p.fragment + ", " + strconv.Quote(p.value) + ")]"
}

// At matches documents whose fragment equals value, e.g. At("document.id", id).
func At(fragment, value string) Predicate {
	return atPredicate{fragment: fragment, value: value}
}

type anyPredicate struct {
	fragment string
	values   []string
}

func (p anyPredicate) Q() string {
	quoted := make([]string, len(p.values))
	for i, value := range p.values {
		quoted[i] = strconv.Quote(value)
	}

	return "[:d = any(" + p.fragment + ", [" + strings.Join(quoted, ", ") + "])]"
}

// Any matches documents whose fragment equals one of values.
func Any(fragment string, values ...string) Predicate {
	return anyPredicate{fragment: fragment, values: values}
}

// Query joins predicates into the value of the "q" form field.
func Query(predicates ...Predicate) string {
	var builder strings.Builder

	builder.WriteString("[")

	for _, predicate := range predicates {
		builder.WriteString(predicate.Q())
	}

	builder.WriteString("]")

	return builder.String()
}
