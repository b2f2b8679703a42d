package extractor

// Column keys in output order.
const (
	ColTitle       = "title"
	ColInstitution = "institution"
	ColPI          = "pi"
	ColFunder      = "funder"
	ColAmount      = "amount"
	ColYear        = "year"
	ColField       = "field"
)

// Columns is the fixed output column order.
var Columns = []string{ColTitle, ColInstitution, ColPI, ColFunder, ColAmount, ColYear, ColField}

var headerLabels = map[string]string{
	ColTitle:       "题目",
	ColInstitution: "受资机构",
	ColPI:          "负责人",
	ColFunder:      "资助机构",
	ColAmount:      "金额",
	ColYear:        "立项年份",
	ColField:       "申报领域",
}

// Header returns the localized header row in column order.
func Header() []string {
	row := make([]string, len(Columns))
	for i, c := range Columns {
		row[i] = headerLabels[c]
	}
	return row
}

// Record is one funded project parsed from a result list item.
// Optional fields are empty when their text segment did not match.
type Record struct {
	Title       string `json:"title" yaml:"title"`
	Institution string `json:"institution,omitempty" yaml:"institution,omitempty"`
	PI          string `json:"pi,omitempty" yaml:"pi,omitempty"`
	Funder      string `json:"funder,omitempty" yaml:"funder,omitempty"`
	Amount      string `json:"amount,omitempty" yaml:"amount,omitempty"`
	Year        string `json:"year,omitempty" yaml:"year,omitempty"`

	// Field is nil when no declared-field segment matched and points to ""
	// when the site printed its "--" placeholder.
	Field *string `json:"field,omitempty" yaml:"field,omitempty"`
}

// FieldValue returns the declared field, or "" when absent.
func (r Record) FieldValue() string {
	if r.Field == nil {
		return ""
	}
	return *r.Field
}

// Row returns the record's cells in Columns order. Absent fields are empty.
func (r Record) Row() []string {
	return []string{r.Title, r.Institution, r.PI, r.Funder, r.Amount, r.Year, r.FieldValue()}
}

// Fingerprint returns the dedup key for the record.
func (r Record) Fingerprint() string {
	return NormalizeTitle(r.Title)
}
