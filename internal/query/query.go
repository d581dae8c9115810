// Package query implements the predicates used to narrow down contact
// searches. Queries match against rendered text, case insensitively.
package query

import "strings"

// Query is a predicate over a contact's textual representation.
type Query interface {
	Match(text string) bool
}

type anyQuery struct{}

func (anyQuery) Match(string) bool { return true }

type noneQuery struct{}

func (noneQuery) Match(string) bool { return false }

// Any matches everything.
var Any Query = anyQuery{}

// None matches nothing.
var None Query = noneQuery{}

// termQuery matches case-insensitive substrings.
type termQuery struct {
	term string
}

// Term returns a query matching texts that contain the given term, ignoring
// case.
func Term(term string) Query {
	return termQuery{term: strings.ToLower(term)}
}

func (q termQuery) Match(text string) bool {
	return strings.Contains(strings.ToLower(text), q.term)
}

type andQuery struct {
	queries []Query
}

// And combines queries so that all of them must match.
func And(queries ...Query) Query {
	return andQuery{queries: queries}
}

func (q andQuery) Match(text string) bool {
	for _, sub := range q.queries {
		if !sub.Match(text) {
			return false
		}
	}
	return true
}

type orQuery struct {
	queries []Query
}

// Or combines queries so that at least one of them must match.
func Or(queries ...Query) Query {
	return orQuery{queries: queries}
}

func (q orQuery) Match(text string) bool {
	for _, sub := range q.queries {
		if sub.Match(text) {
			return true
		}
	}
	return false
}
