package hardness

import "spiderstat/internal/spider"

// CountComplexity implements the complexity-counting criteria published
// with the Spider evaluation suite: Component1 counts clause usage,
// joins, or-connectives, and like-operators; Component2 counts nested
// subqueries including set operations; Others counts aggregation use and
// extra columns or conditions beyond the first.
func CountComplexity(q *spider.Query) Counters {
	return Counters{
		Component1: countComponent1(q),
		Component2: countNested(q),
		Others:     countOthers(q),
	}
}

func countComponent1(q *spider.Query) int {
	count := 0
	if !q.Where.Empty() {
		count++
	}
	if len(q.GroupBy) > 0 {
		count++
	}
	if q.OrderBy != nil {
		count++
	}
	if q.Limit != nil {
		count++
	}
	if n := len(q.From.TableUnits); n > 1 {
		count += n - 1 // each table unit past the first is a join
	}
	for _, conds := range condClauses(q) {
		for _, conn := range conds.Connectives {
			if conn == spider.Or {
				count++
			}
		}
		for _, unit := range conds.Units {
			if unit.Op == spider.OpLike {
				count++
			}
		}
	}
	return count
}

func countNested(q *spider.Query) int {
	count := 0
	for _, conds := range condClauses(q) {
		for _, unit := range conds.Units {
			if unit.Val1.Kind == spider.OperandSubquery {
				count++
			}
			if unit.Val2.Kind == spider.OperandSubquery {
				count++
			}
		}
	}
	if q.Intersect != nil {
		count++
	}
	if q.Except != nil {
		count++
	}
	if q.Union != nil {
		count++
	}
	return count
}

func countOthers(q *spider.Query) int {
	count := 0
	if countAggregations(q) > 1 {
		count++
	}
	if len(q.Select.Columns) > 1 {
		count++
	}
	if len(q.Where.Units) > 1 {
		count++
	}
	if len(q.GroupBy) > 1 {
		count++
	}
	return count
}

func countAggregations(q *spider.Query) int {
	aggs := 0
	for _, col := range q.Select.Columns {
		if col.Agg != spider.AggNone {
			aggs++
		}
	}
	for _, col := range q.GroupBy {
		if col.Agg != spider.AggNone {
			aggs++
		}
	}
	if q.OrderBy != nil {
		for _, val := range q.OrderBy.Vals {
			aggs += valUnitAggs(val)
		}
	}
	for _, unit := range q.Having.Units {
		aggs += valUnitAggs(unit.Val)
	}
	return aggs
}

func valUnitAggs(v spider.ValUnit) int {
	n := 0
	if v.Col1.Agg != spider.AggNone {
		n++
	}
	if v.Col2 != nil && v.Col2.Agg != spider.AggNone {
		n++
	}
	return n
}

func condClauses(q *spider.Query) []spider.CondList {
	return []spider.CondList{q.From.Conds, q.Where, q.Having}
}
