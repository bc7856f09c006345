// Package leadform models form schemas published by the remote lead-capture
// service and owns the single normalization step every compiler relies on.
//
// Remote records are loosely typed: options may arrive as scalars, flags as
// strings or numbers, and the field list under either "fields" or the legacy
// "custom_fields" key. FromMap and Decode absorb those variations so compilers
// only ever see the canonical Form shape.
package leadform

// Remote field type vocabulary. Values outside this list are accepted and
// degrade to single-line text in the compilers.
const (
	TypeText        = "text"
	TypeTextarea    = "textarea"
	TypeTextArea    = "text_area"
	TypeEmail       = "email"
	TypePhone       = "phone"
	TypeWebsite     = "website"
	TypeURL         = "url"
	TypeNumber      = "number"
	TypeDecimal     = "decimal"
	TypeSelect      = "select"
	TypePicker      = "picker"
	TypeChoiceList  = "choice_list"
	TypeCheckbox    = "checkbox"
	TypeRadio       = "radio"
	TypeDate        = "date"
	TypeTime        = "time"
	TypeFileUpload  = "file_upload"
	TypeFile        = "file"
	TypeUpload      = "upload"
	TypeDocument    = "document"
	TypeInformation = "information"
	TypeCaptcha     = "captcha"
)

// Form is the canonical remote form schema.
type Form struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Description    string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields         []Field `json:"fields" yaml:"fields"`
	CompletionText string  `json:"completion_text,omitempty" yaml:"completion_text,omitempty"`
	ErrorText      string  `json:"error_text,omitempty" yaml:"error_text,omitempty"`
}

// Field is a single remote form field after coercion.
type Field struct {
	Name             string   `json:"name" yaml:"name"`
	Label            string   `json:"label" yaml:"label"`
	Type             string   `json:"type" yaml:"type"`
	Required         bool     `json:"required" yaml:"required"`
	HalfWidth        bool     `json:"half_width,omitempty" yaml:"half_width,omitempty"`
	Options          []string `json:"options,omitempty" yaml:"options,omitempty"`
	FileType         string   `json:"file_type,omitempty" yaml:"file_type,omitempty"`
	Content          string   `json:"content,omitempty" yaml:"content,omitempty"`
	Placeholder      string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
	DisablePastDates bool     `json:"disable_past_dates,omitempty" yaml:"disable_past_dates,omitempty"`

	// Reclassified is set when the document heuristic turned the field into
	// a file upload.
	Reclassified bool `json:"-" yaml:"-"`
}

// Summary is the listing view of a remote form.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	FieldCount  int    `json:"field_count"`
}

// Canonical returns a copy of the form with every field normalized. It is
// idempotent, so compilers call it unconditionally.
func (f Form) Canonical() Form {
	out := f
	out.Fields = make([]Field, 0, len(f.Fields))
	for _, field := range f.Fields {
		out.Fields = append(out.Fields, NormalizeField(field))
	}
	return out
}

// Summary derives the listing view of the form.
func (f Form) Summary() Summary {
	return Summary{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		FieldCount:  len(f.Fields),
	}
}

// IsFileType reports whether a remote type already denotes a file upload.
func IsFileType(remoteType string) bool {
	switch fold(remoteType) {
	case TypeFileUpload, TypeFile, TypeUpload, TypeDocument:
		return true
	default:
		return false
	}
}
