package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/navikt/brd-backend/pkg/errs"
)

// TableKind identifies one of the repeatable row tables of a BRD.
type TableKind string

const (
	TableKindStakeholders          TableKind = "stakeholders"
	TableKindDataInputs            TableKind = "data_inputs"
	TableKindDashboardRequirements TableKind = "dash_reqs"
	TableKindBusinessRules         TableKind = "business_rules"
	TableKindExpectedOutputs       TableKind = "expected_outputs"
	TableKindValidation            TableKind = "validation"
	TableKindControlData           TableKind = "control_data"
)

// Column is a single column of a table schema. Title is the header text
// written to the document and must match the published template exactly.
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Schema is the ordered column layout of a table kind.
type Schema []Column

// Keys returns the column keys in schema order.
func (s Schema) Keys() []string {
	keys := make([]string, len(s))
	for i, c := range s {
		keys[i] = c.Key
	}

	return keys
}

// Titles returns the column titles in schema order.
func (s Schema) Titles() []string {
	titles := make([]string, len(s))
	for i, c := range s {
		titles[i] = c.Title
	}

	return titles
}

// Has reports whether the schema contains the column key.
func (s Schema) Has(key string) bool {
	for _, c := range s {
		if c.Key == key {
			return true
		}
	}

	return false
}

// TableDefinition describes a table kind as it appears in the document.
type TableDefinition struct {
	Kind    TableKind `json:"kind"`
	Heading string    `json:"heading"`
	Label   string    `json:"label"`
	Schema  Schema    `json:"columns"`
}

var tableDefinitions = []TableDefinition{
	{
		Kind:    TableKindStakeholders,
		Heading: "2️⃣ Key Stakeholders",
		Label:   "Key Stakeholders",
		Schema: Schema{
			{Key: "role", Title: "Role"},
			{Key: "name", Title: "Name"},
			{Key: "dept", Title: "Department / Notes"},
		},
	},
	{
		Kind:    TableKindDataInputs,
		Heading: "3️⃣ Data Inputs",
		Label:   "Data Inputs",
		Schema: Schema{
			{Key: "source", Title: "Source System/Table"},
			{Key: "description", Title: "Description"},
			{Key: "frequency", Title: "Frequency"},
			{Key: "owner", Title: "Owner"},
		},
	},
	{
		Kind:    TableKindDashboardRequirements,
		Heading: "4️⃣ Dashboard Requirements",
		Label:   "Dashboard Requirements",
		Schema: Schema{
			{Key: "section", Title: "Dashboard Section"},
			{Key: "purpose", Title: "Description / Purpose"},
			{Key: "metrics", Title: "Key Metrics / Fields"},
			{Key: "filters", Title: "Filters Required"},
			{Key: "drill", Title: "Drilldown Needed?"},
		},
	},
	{
		Kind:    TableKindBusinessRules,
		Heading: "5️⃣ Business Rules / Calculations",
		Label:   "Business Rules / Calculations",
		Schema: Schema{
			{Key: "metric", Title: "Metric"},
			{Key: "formula", Title: "Definition / Formula"},
			{Key: "notes", Title: "Notes"},
		},
	},
	{
		Kind:    TableKindExpectedOutputs,
		Heading: "6️⃣ Expected Outputs",
		Label:   "Expected Outputs",
		Schema: Schema{
			{Key: "deliverable", Title: "Deliverable"},
			{Key: "format", Title: "Format / Platform"},
			{Key: "freq", Title: "Frequency"},
			{Key: "audience", Title: "Audience"},
		},
	},
	{
		Kind:    TableKindValidation,
		Heading: "7️⃣ Validation & Sign-off",
		Label:   "Validation & Sign-off",
		Schema: Schema{
			{Key: "step", Title: "Step"},
			{Key: "owner", Title: "Responsible"},
			{Key: "criteria", Title: "Criteria"},
			{Key: "status", Title: "Status"},
		},
	},
	{
		Kind:    TableKindControlData,
		Heading: "9️⃣ Control Data & Validation Sources",
		Label:   "Control Data & Validation Sources",
		Schema: Schema{
			{Key: "source", Title: "Control Report / Source"},
			{Key: "description", Title: "Description / Purpose"},
			{Key: "owner", Title: "Business Owner"},
			{Key: "method", Title: "Validation Method"},
			{Key: "frequency", Title: "Frequency"},
		},
	},
}

// TableKinds returns every table kind in document order.
func TableKinds() []TableKind {
	kinds := make([]TableKind, len(tableDefinitions))
	for i, d := range tableDefinitions {
		kinds[i] = d.Kind
	}

	return kinds
}

// TableDefinitions returns the definition of every table kind in document order.
func TableDefinitions() []TableDefinition {
	defs := make([]TableDefinition, len(tableDefinitions))
	copy(defs, tableDefinitions)

	return defs
}

// Definition returns the definition of the table kind.
func (k TableKind) Definition() (TableDefinition, bool) {
	for _, d := range tableDefinitions {
		if d.Kind == k {
			return d, true
		}
	}

	return TableDefinition{}, false
}

// Schema returns the column schema of the table kind, nil if unknown.
func (k TableKind) Schema() Schema {
	d, ok := k.Definition()
	if !ok {
		return nil
	}

	return d.Schema
}

func (k TableKind) Valid() bool {
	_, ok := k.Definition()
	return ok
}

// ParseTableKind validates a raw table kind, e.g. from a URL parameter.
func ParseTableKind(raw string) (TableKind, error) {
	const op errs.Op = "service.ParseTableKind"

	k := TableKind(raw)
	if !k.Valid() {
		return "", errs.E(errs.InvalidRequest, op, errs.Parameter("kind"), fmt.Errorf("unknown table kind %q", raw))
	}

	return k, nil
}

// Row maps column keys to cell values.
type Row map[string]string

// NewRow returns a row with every column of the schema set to the empty string.
func NewRow(schema Schema) Row {
	row := make(Row, len(schema))
	for _, c := range schema {
		row[c.Key] = ""
	}

	return row
}

// TableSection is an ordered, fixed-schema collection of rows. Every row
// holds exactly the keys of the section's schema.
type TableSection struct {
	kind TableKind
	rows []Row
}

// NewTableSection returns an empty section for the kind.
func NewTableSection(kind TableKind) *TableSection {
	return &TableSection{
		kind: kind,
		rows: []Row{},
	}
}

func (t *TableSection) Kind() TableKind {
	return t.kind
}

func (t *TableSection) Schema() Schema {
	return t.kind.Schema()
}

func (t *TableSection) Len() int {
	return len(t.rows)
}

// AppendRow appends a row with empty values and returns its index.
func (t *TableSection) AppendRow() int {
	t.rows = append(t.rows, NewRow(t.Schema()))

	return len(t.rows) - 1
}

// AppendValues appends a row from values given in schema order. Missing
// trailing values are left empty, extra values are ignored.
func (t *TableSection) AppendValues(values ...string) int {
	idx := t.AppendRow()
	for i, c := range t.Schema() {
		if i < len(values) {
			t.rows[idx][c.Key] = values[i]
		}
	}

	return idx
}

// SetValue updates a single cell in place.
func (t *TableSection) SetValue(index int, column, value string) error {
	const op errs.Op = "TableSection.SetValue"

	if index < 0 || index >= len(t.rows) {
		return errs.E(errs.InvalidRequest, op, errs.Parameter("index"), fmt.Errorf("row %d out of range, %s has %d rows", index, t.kind, len(t.rows)))
	}

	if !t.Schema().Has(column) {
		return errs.E(errs.InvalidRequest, op, errs.Parameter("column"), fmt.Errorf("unknown column %q for %s", column, t.kind))
	}

	t.rows[index][column] = value

	return nil
}

// Rows returns a copy of the rows in order.
func (t *TableSection) Rows() []Row {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		rows[i] = cp
	}

	return rows
}

// Values returns the cell values of every row in schema column order.
func (t *TableSection) Values() [][]string {
	schema := t.Schema()

	values := make([][]string, len(t.rows))
	for i, r := range t.rows {
		cells := make([]string, len(schema))
		for j, c := range schema {
			cells[j] = r[c.Key]
		}
		values[i] = cells
	}

	return values
}

// Clone returns a deep copy of the section.
func (t *TableSection) Clone() *TableSection {
	return &TableSection{
		kind: t.kind,
		rows: t.Rows(),
	}
}

func (t *TableSection) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.rows)
}

// appendNormalized appends rows keeping only schema columns and filling
// the missing ones with the empty string.
func (t *TableSection) appendNormalized(rows []Row) {
	for _, in := range rows {
		idx := t.AppendRow()
		for k, v := range in {
			if t.Schema().Has(k) {
				t.rows[idx][k] = v
			}
		}
	}
}

// Tables holds one section per table kind.
type Tables map[TableKind]*TableSection

// NewTables returns an empty section for every table kind.
func NewTables() Tables {
	tables := make(Tables, len(tableDefinitions))
	for _, k := range TableKinds() {
		tables[k] = NewTableSection(k)
	}

	return tables
}

func (t *Tables) UnmarshalJSON(data []byte) error {
	raw := map[string][]Row{}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	tables := NewTables()
	for name, rows := range raw {
		kind := TableKind(name)
		if !kind.Valid() {
			return fmt.Errorf("unknown table kind %q", name)
		}

		tables[kind].appendNormalized(rows)
	}

	*t = tables

	return nil
}

// ParseCSVRows parses comma separated lines into values for the table kind.
// Blank lines are skipped, every other line must have exactly one field per
// schema column.
func ParseCSVRows(kind TableKind, text string) ([][]string, error) {
	const op errs.Op = "service.ParseCSVRows"

	schema := kind.Schema()
	if schema == nil {
		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter("kind"), fmt.Errorf("unknown table kind %q", kind))
	}

	var rows [][]string

	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) != len(schema) {
			return nil, errs.E(errs.Validation, op, errs.Parameter("csv"),
				fmt.Errorf("line %d: expected %d fields (%s), got %d", i+1, len(schema), strings.Join(schema.Keys(), ", "), len(parts)),
			)
		}

		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}

		rows = append(rows, parts)
	}

	return rows, nil
}
