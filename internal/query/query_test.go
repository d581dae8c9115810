package query

import "testing"

func TestTerm(t *testing.T) {
	tests := []struct {
		name string
		term string
		text string
		want bool
	}{
		{"exact", "john", "john", true},
		{"substring", "ohn", "john doe", true},
		{"case insensitive term", "JOHN", "john doe", true},
		{"case insensitive text", "john", "JOHN DOE", true},
		{"no match", "jane", "john doe", false},
		{"empty term matches", "", "anything", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Term(tt.term).Match(tt.text); got != tt.want {
				t.Errorf("Term(%q).Match(%q) = %v, want %v",
					tt.term, tt.text, got, tt.want)
			}
		})
	}
}

func TestAnyAndNone(t *testing.T) {
	if !Any.Match("") || !Any.Match("text") {
		t.Error("Any should match everything")
	}
	if None.Match("") || None.Match("text") {
		t.Error("None should match nothing")
	}
}

func TestAnd(t *testing.T) {
	q := And(Term("john"), Term("doe"))
	if !q.Match("john doe") {
		t.Error("all terms present, expected a match")
	}
	if q.Match("john smith") {
		t.Error("one term missing, expected no match")
	}
	if !And().Match("anything") {
		t.Error("empty conjunction should match everything")
	}
}

func TestOr(t *testing.T) {
	q := Or(Term("john"), Term("jane"))
	if !q.Match("jane doe") {
		t.Error("one term present, expected a match")
	}
	if q.Match("jim doe") {
		t.Error("no term present, expected no match")
	}
	if Or().Match("anything") {
		t.Error("empty disjunction should match nothing")
	}
}
