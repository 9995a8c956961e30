package spider

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AggOp indexes the aggregation function applied to a column, in the
// order the benchmark files use. The zero value means no aggregation.
type AggOp int

const (
	AggNone AggOp = iota
	AggMax
	AggMin
	AggCount
	AggSum
	AggAvg
)

// CondOp indexes the comparison operator of a condition unit, following
// the benchmark's operator table.
type CondOp int

const (
	OpNot CondOp = iota
	OpBetween
	OpEq
	OpGt
	OpLt
	OpGe
	OpLe
	OpNe
	OpIn
	OpLike
	OpIs
	OpExists
)

// Connective joins two condition units inside a where or having clause.
type Connective string

const (
	And Connective = "and"
	Or  Connective = "or"
)

// Query is the parsed structural form of one SQL query as shipped in the
// benchmark's dev files. Select and From are always present; every other
// clause is optional and zero-valued when the query does not use it.
// Subqueries nest as further Query values but are only decoded, never
// flattened.
type Query struct {
	Select    SelectClause
	From      FromClause
	Where     CondList
	GroupBy   []ColUnit
	Having    CondList
	OrderBy   *OrderBy
	Limit     *int
	Union     *Query
	Intersect *Query
	Except    *Query
}

// UnmarshalJSON decodes the benchmark's sql object and fails fast when a
// required clause is missing, so malformed records never reach the
// summarizer half-built.
func (q *Query) UnmarshalJSON(data []byte) error {
	var raw struct {
		Select    json.RawMessage `json:"select"`
		From      json.RawMessage `json:"from"`
		Where     CondList        `json:"where"`
		GroupBy   []ColUnit       `json:"groupBy"`
		Having    CondList        `json:"having"`
		OrderBy   json.RawMessage `json:"orderBy"`
		Limit     *int            `json:"limit"`
		Union     *Query          `json:"union"`
		Intersect *Query          `json:"intersect"`
		Except    *Query          `json:"except"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if isAbsent(raw.Select) {
		return fmt.Errorf("query is missing the required select clause")
	}
	if isAbsent(raw.From) {
		return fmt.Errorf("query is missing the required from clause")
	}
	if err := json.Unmarshal(raw.Select, &q.Select); err != nil {
		return fmt.Errorf("select clause: %w", err)
	}
	if err := json.Unmarshal(raw.From, &q.From); err != nil {
		return fmt.Errorf("from clause: %w", err)
	}
	q.Where = raw.Where
	q.GroupBy = raw.GroupBy
	q.Having = raw.Having
	if !isAbsent(raw.OrderBy) {
		var ob OrderBy
		if err := json.Unmarshal(raw.OrderBy, &ob); err != nil {
			return fmt.Errorf("orderBy clause: %w", err)
		}
		// An empty array means the query has no order-by clause.
		if ob.Direction != "" {
			q.OrderBy = &ob
		}
	}
	q.Limit = raw.Limit
	q.Union = raw.Union
	q.Intersect = raw.Intersect
	q.Except = raw.Except
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// SelectClause decodes the two-element select array: a distinct flag and
// the projected columns.
type SelectClause struct {
	Distinct bool
	Columns  []SelectColumn
}

func (s *SelectClause) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("select clause has %d elements, want 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &s.Distinct); err != nil {
		return fmt.Errorf("select distinct flag: %w", err)
	}
	if err := json.Unmarshal(raw[1], &s.Columns); err != nil {
		return fmt.Errorf("select columns: %w", err)
	}
	return nil
}

// SelectColumn is one projected column: its aggregation (if any) and the
// value expression it projects.
type SelectColumn struct {
	Agg AggOp
	Val ValUnit
}

func (c *SelectColumn) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("select column has %d elements, want 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &c.Agg); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &c.Val)
}

// FromClause lists the table units a query draws from and the join
// conditions between them.
type FromClause struct {
	TableUnits []TableUnit `json:"table_units"`
	Conds      CondList    `json:"conds"`
}

// TableUnit is one entry of a from clause: either a plain table
// reference or a derived table (nested query). The table reference
// itself is kept raw since nothing here resolves schema ids.
type TableUnit struct {
	Subquery *Query
	Ref      json.RawMessage
}

func (t *TableUnit) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("table unit has %d elements, want 2", len(raw))
	}
	var kind string
	if err := json.Unmarshal(raw[0], &kind); err != nil {
		return fmt.Errorf("table unit kind: %w", err)
	}
	if kind == "sql" {
		t.Subquery = new(Query)
		return json.Unmarshal(raw[1], t.Subquery)
	}
	t.Ref = raw[1]
	return nil
}

// CondList is the decoded form of a condition clause. The benchmark
// stores conditions as a flat array alternating between condition units
// and connective tokens; decoding splits them while preserving order.
type CondList struct {
	Units       []CondUnit
	Connectives []Connective
}

func (c *CondList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for i, elem := range raw {
		e := bytes.TrimSpace(elem)
		if len(e) > 0 && e[0] == '"' {
			var conn Connective
			if err := json.Unmarshal(e, &conn); err != nil {
				return fmt.Errorf("condition connective %d: %w", i, err)
			}
			c.Connectives = append(c.Connectives, conn)
			continue
		}
		var unit CondUnit
		if err := json.Unmarshal(e, &unit); err != nil {
			return fmt.Errorf("condition unit %d: %w", i, err)
		}
		c.Units = append(c.Units, unit)
	}
	return nil
}

// Empty reports whether the clause holds no conditions, which is how the
// benchmark encodes an unused clause.
func (c CondList) Empty() bool {
	return len(c.Units) == 0
}

// HasConnective reports whether conn joins any two conditions in the
// clause.
func (c CondList) HasConnective(conn Connective) bool {
	for _, got := range c.Connectives {
		if got == conn {
			return true
		}
	}
	return false
}

// CondUnit is one comparison: negation flag, operator, the compared
// value expression, and up to two operands.
type CondUnit struct {
	Not  bool
	Op   CondOp
	Val  ValUnit
	Val1 Operand
	Val2 Operand
}

func (u *CondUnit) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 5 {
		return fmt.Errorf("condition unit has %d elements, want 5", len(raw))
	}
	if err := json.Unmarshal(raw[0], &u.Not); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &u.Op); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[2], &u.Val); err != nil {
		return fmt.Errorf("condition value unit: %w", err)
	}
	if err := json.Unmarshal(raw[3], &u.Val1); err != nil {
		return err
	}
	return json.Unmarshal(raw[4], &u.Val2)
}

// OperandKind discriminates what a condition operand holds. The
// benchmark encodes subqueries as JSON objects and everything else
// (literals, column references) as scalars or arrays.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandScalar
	OperandSubquery
)

// Operand is the tagged form of a condition operand. Scalar payloads are
// dropped: nothing in this tool reads literal values, only whether the
// operand is a nested query.
type Operand struct {
	Kind     OperandKind
	Subquery *Query
}

func (o *Operand) UnmarshalJSON(data []byte) error {
	e := bytes.TrimSpace(data)
	switch {
	case len(e) == 0 || bytes.Equal(e, []byte("null")):
		o.Kind = OperandNone
	case e[0] == '{':
		o.Subquery = new(Query)
		if err := json.Unmarshal(e, o.Subquery); err != nil {
			return fmt.Errorf("operand subquery: %w", err)
		}
		o.Kind = OperandSubquery
	default:
		o.Kind = OperandScalar
	}
	return nil
}

// ValUnit is a value expression: an arithmetic operator over one or two
// column units.
type ValUnit struct {
	Op   int
	Col1 ColUnit
	Col2 *ColUnit
}

func (v *ValUnit) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("value unit has %d elements, want 3", len(raw))
	}
	if err := json.Unmarshal(raw[0], &v.Op); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &v.Col1); err != nil {
		return err
	}
	if !isAbsent(raw[2]) {
		v.Col2 = new(ColUnit)
		return json.Unmarshal(raw[2], v.Col2)
	}
	return nil
}

// ColUnit is a single column reference with its aggregation and distinct
// flag.
type ColUnit struct {
	Agg      AggOp
	Col      int
	Distinct bool
}

func (c *ColUnit) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("column unit has %d elements, want 3", len(raw))
	}
	if err := json.Unmarshal(raw[0], &c.Agg); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &c.Col); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &c.Distinct)
}

// OrderBy holds the sort direction token and the value units sorted by.
type OrderBy struct {
	Direction string
	Vals      []ValUnit
}

func (o *OrderBy) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if len(raw) != 2 {
		return fmt.Errorf("orderBy clause has %d elements, want 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &o.Direction); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &o.Vals)
}
