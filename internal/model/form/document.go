package form

// ContractTypeExternal is the contract type that activates the conditional
// sourcing fields.
const ContractTypeExternal = "external"

// Document is the structured procurement form synchronized between client and
// server. Field names follow the wire format of the session service.
type Document struct {
	GeneralInformation GeneralInformation `json:"general_information"`
	FinancialDetails   FinancialDetails   `json:"financial_details"`
}

// GeneralInformation groups the descriptive half of the form.
type GeneralInformation struct {
	Title               string              `json:"title"`
	DetailedDescription DetailedDescription `json:"detailed_description"`
}

// DetailedDescription holds the contract narrative. SourceType and
// ContractLimit only exist when TypeOfContract is "external".
type DetailedDescription struct {
	BusinessNeed   string `json:"business_need"`
	ProjectScope   string `json:"project_scope"`
	TypeOfContract string `json:"type_of_contract"`
	SourceType     string `json:"source_type,omitempty"`
	ContractLimit  string `json:"contract_limit,omitempty"`
}

// FinancialDetails groups the financial half of the form. Dates are stored in
// canonical YYYY-MM-DD form.
type FinancialDetails struct {
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	ExpectedAmount string `json:"expected_amount"`
	Currency       string `json:"currency"`
}

// Clone returns an independent copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	copied := *d
	return &copied
}

// External reports whether the conditional sourcing fields apply.
func (d *Document) External() bool {
	return d.GeneralInformation.DetailedDescription.TypeOfContract == ContractTypeExternal
}

// Normalize converts date fields to canonical form and clears conditional
// fields that do not apply. Unparseable dates are reported so user input can
// be rejected before it reaches the server.
func (d *Document) Normalize() error {
	var bad []string
	for _, f := range dateFields {
		value, err := NormalizeDate(f.Get(d))
		if err != nil {
			bad = append(bad, f.Path)
			continue
		}
		f.Set(d, value)
	}
	if !d.External() {
		d.GeneralInformation.DetailedDescription.SourceType = ""
		d.GeneralInformation.DetailedDescription.ContractLimit = ""
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}
