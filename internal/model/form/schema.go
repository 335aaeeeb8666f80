package form

import (
	"errors"
	"fmt"
	"strings"
)

// Field describes one leaf of the document through typed accessors. The
// schema table drives validation, field lookup and merging so conditional
// variants never need their own code path.
type Field struct {
	Path     string
	Date     bool
	Get      func(*Document) string
	Set      func(*Document, string)
	Required func(*Document) bool
}

func always(*Document) bool { return true }

func whenExternal(d *Document) bool { return d.External() }

// Schema lists every document field in display order. Conditional fields
// carry a predicate instead of a hard-coded variant.
var Schema = []Field{
	{
		Path:     "general_information.title",
		Get:      func(d *Document) string { return d.GeneralInformation.Title },
		Set:      func(d *Document, v string) { d.GeneralInformation.Title = v },
		Required: always,
	},
	{
		Path:     "general_information.detailed_description.business_need",
		Get:      func(d *Document) string { return d.GeneralInformation.DetailedDescription.BusinessNeed },
		Set:      func(d *Document, v string) { d.GeneralInformation.DetailedDescription.BusinessNeed = v },
		Required: always,
	},
	{
		Path:     "general_information.detailed_description.project_scope",
		Get:      func(d *Document) string { return d.GeneralInformation.DetailedDescription.ProjectScope },
		Set:      func(d *Document, v string) { d.GeneralInformation.DetailedDescription.ProjectScope = v },
		Required: always,
	},
	{
		Path:     "general_information.detailed_description.type_of_contract",
		Get:      func(d *Document) string { return d.GeneralInformation.DetailedDescription.TypeOfContract },
		Set:      func(d *Document, v string) { d.GeneralInformation.DetailedDescription.TypeOfContract = v },
		Required: always,
	},
	{
		Path:     "general_information.detailed_description.source_type",
		Get:      func(d *Document) string { return d.GeneralInformation.DetailedDescription.SourceType },
		Set:      func(d *Document, v string) { d.GeneralInformation.DetailedDescription.SourceType = v },
		Required: whenExternal,
	},
	{
		Path:     "general_information.detailed_description.contract_limit",
		Get:      func(d *Document) string { return d.GeneralInformation.DetailedDescription.ContractLimit },
		Set:      func(d *Document, v string) { d.GeneralInformation.DetailedDescription.ContractLimit = v },
		Required: whenExternal,
	},
	{
		Path:     "financial_details.start_date",
		Date:     true,
		Get:      func(d *Document) string { return d.FinancialDetails.StartDate },
		Set:      func(d *Document, v string) { d.FinancialDetails.StartDate = v },
		Required: always,
	},
	{
		Path:     "financial_details.end_date",
		Date:     true,
		Get:      func(d *Document) string { return d.FinancialDetails.EndDate },
		Set:      func(d *Document, v string) { d.FinancialDetails.EndDate = v },
		Required: always,
	},
	{
		Path:     "financial_details.expected_amount",
		Get:      func(d *Document) string { return d.FinancialDetails.ExpectedAmount },
		Set:      func(d *Document, v string) { d.FinancialDetails.ExpectedAmount = v },
		Required: always,
	},
	{
		Path:     "financial_details.currency",
		Get:      func(d *Document) string { return d.FinancialDetails.Currency },
		Set:      func(d *Document, v string) { d.FinancialDetails.Currency = v },
		Required: always,
	},
}

var dateFields = func() []Field {
	var out []Field
	for _, f := range Schema {
		if f.Date {
			out = append(out, f)
		}
	}
	return out
}()

// ErrUnknownField reports a SetField path outside the schema.
var ErrUnknownField = errors.New("unknown form field")

// ValidationError lists the fields that failed the required check.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form validation failed: missing or invalid %s", strings.Join(e.Fields, ", "))
}

// Validate runs the required-field check. Conditional fields join the
// required set only when the contract type is "external". A nil return means
// the document may be pushed.
func Validate(d *Document) error {
	var missing []string
	for _, f := range Schema {
		if f.Required(d) && strings.TrimSpace(f.Get(d)) == "" {
			missing = append(missing, f.Path)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Lookup finds a schema field by its dotted path. Short suffixes are accepted
// when unambiguous, e.g. "title" or "start_date".
func Lookup(path string) (Field, bool) {
	for _, f := range Schema {
		if f.Path == path {
			return f, true
		}
	}
	var match Field
	found := 0
	for _, f := range Schema {
		if strings.HasSuffix(f.Path, "."+path) {
			match = f
			found++
		}
	}
	if found == 1 {
		return match, true
	}
	return Field{}, false
}

// FirstEmptyPath returns the path of the first unfilled field in schema
// order, or "" when the document is complete for its contract type.
func FirstEmptyPath(d *Document) string {
	for _, f := range Schema {
		if f.Required(d) && strings.TrimSpace(f.Get(d)) == "" {
			return f.Path
		}
	}
	return ""
}
