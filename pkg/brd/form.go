package brd

import (
	"fmt"
	"io"

	"github.com/navikt/brd-backend/pkg/errs"
	"github.com/navikt/brd-backend/pkg/service"
	"gopkg.in/yaml.v3"
)

// Form is the YAML description of a record used by the command line renderer.
type Form struct {
	ProjectName     string                         `yaml:"project_name"`
	RequestedBy     string                         `yaml:"requested_by"`
	PreparedBy      string                         `yaml:"prepared_by"`
	Version         string                         `yaml:"version"`
	DateCreated     string                         `yaml:"date_created"`
	BusinessProblem string                         `yaml:"business_problem"`
	BusinessGoal    string                         `yaml:"business_goal"`
	InScope         string                         `yaml:"in_scope"`
	OutOfScope      string                         `yaml:"out_of_scope"`
	Frequency       string                         `yaml:"frequency"`
	Notes           string                         `yaml:"notes"`
	Tables          map[string][]map[string]string `yaml:"tables"`
}

// Record converts the form, rows must only use the columns of their table.
func (f *Form) Record() (*service.FormRecord, error) {
	const op errs.Op = "brd.Form.Record"

	record := service.NewFormRecord()
	record.FormFields = service.FormFields{
		ProjectName:     f.ProjectName,
		RequestedBy:     f.RequestedBy,
		PreparedBy:      f.PreparedBy,
		Version:         f.Version,
		DateCreated:     f.DateCreated,
		BusinessProblem: f.BusinessProblem,
		BusinessGoal:    f.BusinessGoal,
		InScope:         f.InScope,
		OutOfScope:      f.OutOfScope,
		Frequency:       service.Frequency(f.Frequency),
		Notes:           f.Notes,
	}

	for name := range f.Tables {
		if _, err := service.ParseTableKind(name); err != nil {
			return nil, errs.E(op, err)
		}
	}

	for _, kind := range service.TableKinds() {
		table := record.Table(kind)

		for _, row := range f.Tables[string(kind)] {
			idx := table.AppendRow()

			for _, column := range table.Schema().Keys() {
				if v, ok := row[column]; ok {
					_ = table.SetValue(idx, column, v)
				}
			}

			for column := range row {
				if !table.Schema().Has(column) {
					return nil, errs.E(errs.Validation, op, errs.Parameter("column"), fmt.Errorf("unknown column %q for %s", column, kind))
				}
			}
		}
	}

	err := record.Validate()
	if err != nil {
		return nil, errs.E(errs.Validation, op, err)
	}

	return record, nil
}

// LoadForm reads a YAML form and returns the record it describes.
func LoadForm(r io.Reader) (*service.FormRecord, error) {
	const op errs.Op = "brd.LoadForm"

	form := &Form{}

	err := yaml.NewDecoder(r).Decode(form)
	if err != nil && err != io.EOF {
		return nil, errs.E(errs.InvalidRequest, op, fmt.Errorf("decoding form: %w", err))
	}

	record, err := form.Record()
	if err != nil {
		return nil, errs.E(op, err)
	}

	return record, nil
}
