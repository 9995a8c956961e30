// Package hardness assigns an ordinal difficulty label to a parsed SQL
// query based on three structural complexity counters.
package hardness

import "spiderstat/internal/spider"

// Label is an ordinal difficulty class: easy < medium < hard < extra.
type Label string

const (
	Easy   Label = "easy"
	Medium Label = "medium"
	Hard   Label = "hard"
	Extra  Label = "extra"
)

// Counters are the three complexity counts a query is judged by.
// Classify only consumes them; how they are counted is the CounterFunc's
// business.
type Counters struct {
	Component1 int
	Component2 int
	Others     int
}

// CounterFunc computes complexity counters for a query. CountComplexity
// is the shipped default; evaluation harnesses with their own counting
// rules plug in here.
type CounterFunc func(q *spider.Query) Counters

// Classify maps counters to a hardness label. The rules form an ordered
// decision list whose regions overlap; the first matching rule wins, so
// the order below is load-bearing and must not change.
func Classify(c Counters) Label {
	switch {
	case c.Component1 <= 1 && c.Others == 0 && c.Component2 == 0:
		return Easy
	case (c.Others <= 2 && c.Component1 <= 1 && c.Component2 == 0) ||
		(c.Component1 <= 2 && c.Others < 2 && c.Component2 == 0):
		return Medium
	case (c.Others > 2 && c.Component1 <= 2 && c.Component2 == 0) ||
		(c.Component1 > 2 && c.Component1 <= 3 && c.Others <= 2 && c.Component2 == 0) ||
		(c.Component1 <= 1 && c.Others == 0 && c.Component2 <= 1):
		return Hard
	default:
		return Extra
	}
}

// Evaluate classifies a query using the supplied counter.
func Evaluate(q *spider.Query, count CounterFunc) Label {
	return Classify(count(q))
}
