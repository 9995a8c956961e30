package spider

import (
	"encoding/json"
	"strings"
	"testing"
)

const minimalSQL = `{
	"select": [false, [[0, [0, [0, 5, false], null]]]],
	"from": {"table_units": [["table_unit", 1]], "conds": []},
	"where": [],
	"groupBy": [],
	"having": [],
	"orderBy": [],
	"limit": null,
	"intersect": null,
	"union": null,
	"except": null
}`

const fullSQL = `{
	"select": [true, [[3, [0, [0, 2, false], null]]]],
	"from": {
		"table_units": [["table_unit", 0], ["table_unit", 1]],
		"conds": [[false, 2, [0, [0, 3, false], null], [0, 7, false], null]]
	},
	"where": [
		[false, 8, [0, [0, 4, false], null], ` + minimalSQL + `, null],
		"and",
		[false, 9, [0, [0, 5, false], null], "%x%", null]
	],
	"groupBy": [[0, 2, false]],
	"having": [[false, 3, [0, [1, 0, false], null], 10.0, null]],
	"orderBy": ["desc", [[0, [3, 0, false], null]]],
	"limit": 3,
	"intersect": ` + minimalSQL + `,
	"union": null,
	"except": null
}`

func decode(t *testing.T, data string) *Query {
	t.Helper()
	var q Query
	if err := json.Unmarshal([]byte(data), &q); err != nil {
		t.Fatalf("failed to decode query: %v", err)
	}
	return &q
}

func TestDecodeMinimalQuery(t *testing.T) {
	q := decode(t, minimalSQL)

	if q.Select.Distinct {
		t.Error("expected no distinct flag")
	}
	if len(q.Select.Columns) != 1 {
		t.Fatalf("expected 1 select column, got %d", len(q.Select.Columns))
	}
	if q.Select.Columns[0].Agg != AggNone {
		t.Errorf("expected no aggregation, got %d", q.Select.Columns[0].Agg)
	}
	if len(q.From.TableUnits) != 1 {
		t.Errorf("expected 1 table unit, got %d", len(q.From.TableUnits))
	}
	if !q.Where.Empty() {
		t.Error("expected empty where clause")
	}
	if q.OrderBy != nil {
		t.Error("expected nil orderBy for empty array")
	}
	if q.Limit != nil {
		t.Error("expected nil limit")
	}
	if q.Union != nil || q.Intersect != nil || q.Except != nil {
		t.Error("expected no set operations")
	}
}

func TestDecodeFullQuery(t *testing.T) {
	q := decode(t, fullSQL)

	if !q.Select.Distinct {
		t.Error("expected distinct flag")
	}
	if q.Select.Columns[0].Agg != AggCount {
		t.Errorf("expected count aggregation, got %d", q.Select.Columns[0].Agg)
	}
	if len(q.From.TableUnits) != 2 {
		t.Fatalf("expected 2 table units, got %d", len(q.From.TableUnits))
	}
	if len(q.From.Conds.Units) != 1 {
		t.Errorf("expected 1 join condition, got %d", len(q.From.Conds.Units))
	}

	if len(q.Where.Units) != 2 {
		t.Fatalf("expected 2 where conditions, got %d", len(q.Where.Units))
	}
	if !q.Where.HasConnective(And) {
		t.Error("expected an and connective")
	}
	if q.Where.HasConnective(Or) {
		t.Error("unexpected or connective")
	}
	if q.Where.Units[0].Val1.Kind != OperandSubquery {
		t.Errorf("expected subquery operand, got kind %d", q.Where.Units[0].Val1.Kind)
	}
	if q.Where.Units[0].Val1.Subquery == nil {
		t.Fatal("expected decoded subquery")
	}
	if q.Where.Units[1].Op != OpLike {
		t.Errorf("expected like operator, got %d", q.Where.Units[1].Op)
	}
	if q.Where.Units[1].Val1.Kind != OperandScalar {
		t.Errorf("expected scalar operand, got kind %d", q.Where.Units[1].Val1.Kind)
	}

	if len(q.GroupBy) != 1 {
		t.Errorf("expected 1 group-by column, got %d", len(q.GroupBy))
	}
	if len(q.Having.Units) != 1 {
		t.Fatalf("expected 1 having condition, got %d", len(q.Having.Units))
	}
	if q.Having.Units[0].Val.Col1.Agg != AggMax {
		t.Errorf("expected max aggregation in having, got %d", q.Having.Units[0].Val.Col1.Agg)
	}

	if q.OrderBy == nil || q.OrderBy.Direction != "desc" {
		t.Errorf("expected desc orderBy, got %+v", q.OrderBy)
	}
	if q.Limit == nil || *q.Limit != 3 {
		t.Errorf("expected limit 3, got %v", q.Limit)
	}
	if q.Intersect == nil {
		t.Error("expected intersect subquery")
	}
	if q.Union != nil || q.Except != nil {
		t.Error("unexpected union/except")
	}
}

func TestMissingSelectFailsFast(t *testing.T) {
	var q Query
	err := json.Unmarshal([]byte(`{"from": {"table_units": [["table_unit", 1]], "conds": []}}`), &q)
	if err == nil {
		t.Fatal("expected error for missing select clause")
	}
	if !strings.Contains(err.Error(), "select") {
		t.Errorf("error should name the select clause, got: %v", err)
	}
}

func TestMissingFromFailsFast(t *testing.T) {
	var q Query
	err := json.Unmarshal([]byte(`{"select": [false, [[0, [0, [0, 5, false], null]]]]}`), &q)
	if err == nil {
		t.Fatal("expected error for missing from clause")
	}
	if !strings.Contains(err.Error(), "from") {
		t.Errorf("error should name the from clause, got: %v", err)
	}
}

func TestTableUnitVariants(t *testing.T) {
	// Derived table.
	q := decode(t, `{
		"select": [false, [[0, [0, [0, 5, false], null]]]],
		"from": {"table_units": [["sql", `+minimalSQL+`]], "conds": []}
	}`)
	if q.From.TableUnits[0].Subquery == nil {
		t.Error("expected decoded derived-table subquery")
	}

	// Table reference by name rather than id still decodes.
	q = decode(t, `{
		"select": [false, [[0, [0, [0, 5, false], null]]]],
		"from": {"table_units": [["table_unit", "t"]], "conds": []}
	}`)
	if q.From.TableUnits[0].Subquery != nil {
		t.Error("expected plain table unit")
	}
	if len(q.From.TableUnits) != 1 {
		t.Errorf("expected 1 table unit, got %d", len(q.From.TableUnits))
	}
}

func TestCondListKeepsOrderAndConnectives(t *testing.T) {
	q := decode(t, `{
		"select": [false, [[0, [0, [0, 5, false], null]]]],
		"from": {"table_units": [["table_unit", 1]], "conds": []},
		"where": [
			[false, 2, [0, [0, 1, false], null], 1.0, null],
			"or",
			[false, 3, [0, [0, 2, false], null], 2.0, null],
			"and",
			[false, 4, [0, [0, 3, false], null], 3.0, null]
		]
	}`)
	if len(q.Where.Units) != 3 {
		t.Fatalf("expected 3 condition units, got %d", len(q.Where.Units))
	}
	want := []Connective{Or, And}
	if len(q.Where.Connectives) != len(want) {
		t.Fatalf("expected %d connectives, got %d", len(want), len(q.Where.Connectives))
	}
	for i, conn := range want {
		if q.Where.Connectives[i] != conn {
			t.Errorf("connective %d: expected %q, got %q", i, conn, q.Where.Connectives[i])
		}
	}
}
