// Package summary encodes which clauses a parsed SQL query uses into a
// fixed-schema delimited string for spreadsheet-style analysis.
package summary

import (
	"strconv"
	"strings"

	"spiderstat/internal/spider"
)

// aggOps maps an aggregation index to its token, in benchmark order. The
// zero entry means no aggregation and is never emitted.
var aggOps = [...]string{"none", "max", "min", "count", "sum", "avg"}

// Summarize builds one field per clause category, in a fixed order, plus
// a trailing count of the clauses the query uses, and joins them with
// delimiter. Absent clauses yield empty fields so positions stay stable
// across all outputs. Only top-level clauses are inspected; nested
// subqueries are flagged, not traversed. The encoding is lossy and not
// meant to round-trip.
func Summarize(q *spider.Query, delimiter rune) string {
	clauses := 2 // select and from are always present
	fields := []string{
		selectField(q.Select),
		"FROM " + strconv.Itoa(len(q.From.TableUnits)),
	}

	if q.Where.Empty() {
		fields = append(fields, "")
	} else {
		clauses++
		fields = append(fields, condField("WHERE ", q.Where, ""))
	}

	if len(q.GroupBy) > 0 {
		clauses++
		fields = append(fields, "GROUP BY ")
	} else {
		fields = append(fields, "")
	}

	if q.Having.Empty() {
		fields = append(fields, "")
	} else {
		clauses++
		fields = append(fields, condField("HAVING ", q.Having, havingAggTokens(q.Having)))
	}

	if q.OrderBy != nil {
		clauses++
		fields = append(fields, "ORDER BY "+q.OrderBy.Direction+" ")
	} else {
		fields = append(fields, "")
	}

	if q.Limit != nil {
		clauses++
		fields = append(fields, "LIMIT "+strconv.Itoa(*q.Limit)+" ")
	} else {
		fields = append(fields, "")
	}

	fields = append(fields, setOpField("UNION ", q.Union, &clauses))
	fields = append(fields, setOpField("INTERSECT ", q.Intersect, &clauses))
	fields = append(fields, setOpField("EXCEPT ", q.Except, &clauses))

	fields = append(fields, strconv.Itoa(clauses))
	return strings.Join(fields, string(delimiter))
}

func selectField(sel spider.SelectClause) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if sel.Distinct {
		b.WriteString("DISTINCT ")
	}
	for _, col := range sel.Columns {
		b.WriteString(aggToken(col.Agg))
	}
	return b.String()
}

// condField renders a where or having fragment: the keyword, the
// connectives appearing anywhere in the clause, any aggregation tokens
// the caller collected, and one SUBQUERY marker if any condition
// compares against a nested query (scan stops at the first match).
func condField(keyword string, conds spider.CondList, aggTokens string) string {
	var b strings.Builder
	b.WriteString(keyword)
	if conds.HasConnective(spider.And) {
		b.WriteString("AND ")
	}
	if conds.HasConnective(spider.Or) {
		b.WriteString("OR ")
	}
	b.WriteString(aggTokens)
	for _, unit := range conds.Units {
		if unit.Val1.Kind == spider.OperandSubquery || unit.Val2.Kind == spider.OperandSubquery {
			b.WriteString("SUBQUERY ")
			break
		}
	}
	return b.String()
}

// havingAggTokens lists the aggregation tokens named by each condition's
// comparison target, in clause order.
func havingAggTokens(conds spider.CondList) string {
	var b strings.Builder
	for _, unit := range conds.Units {
		b.WriteString(aggToken(unit.Val.Col1.Agg))
		if unit.Val.Col2 != nil {
			b.WriteString(aggToken(unit.Val.Col2.Agg))
		}
	}
	return b.String()
}

func setOpField(keyword string, sub *spider.Query, clauses *int) string {
	if sub == nil {
		return ""
	}
	*clauses++
	return keyword
}

func aggToken(agg spider.AggOp) string {
	if agg <= spider.AggNone || int(agg) >= len(aggOps) {
		return ""
	}
	return aggOps[agg] + " "
}
