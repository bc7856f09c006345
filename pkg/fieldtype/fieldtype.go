// Package fieldtype translates the remote field-type vocabulary into the
// vocabularies of the local form builders. Lookups are total: anything
// unknown maps to single-line text.
package fieldtype

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/goliatone/go-formimport/pkg/leadform"
	"github.com/goliatone/go-formimport/pkg/target"
)

// Target A tag names.
const (
	TagText     = "text"
	TagEmail    = "email"
	TagTextarea = "textarea"
	TagNumber   = "number"
	TagTel      = "tel"
	TagSelect   = "select"
	TagCheckbox = "checkbox"
	TagRadio    = "radio"
	TagDate     = "date"
	TagFile     = "file"
	TagCaptcha  = "recaptcha"
	TagSubmit   = "submit"
)

// Target B field types.
const (
	Text       = "text"
	Email      = "email"
	Textarea   = "textarea"
	Select     = "select"
	Checkbox   = "checkbox"
	Radio      = "radio"
	Number     = "number"
	Phone      = "phone"
	URL        = "url"
	Date       = "date"
	Time       = "time"
	FileUpload = "fileupload"
	HTML       = "html"
	Captcha    = "captcha"
)

var structuredTypes = map[string]string{
	leadform.TypeText:        Text,
	leadform.TypeEmail:       Email,
	leadform.TypeTextarea:    Textarea,
	leadform.TypeTextArea:    Textarea,
	leadform.TypeSelect:      Select,
	leadform.TypePicker:      Select,
	leadform.TypeChoiceList:  Select,
	leadform.TypeCheckbox:    Checkbox,
	leadform.TypeRadio:       Radio,
	leadform.TypeNumber:      Number,
	leadform.TypeDecimal:     Number,
	leadform.TypePhone:       Phone,
	leadform.TypeURL:         URL,
	leadform.TypeWebsite:     URL,
	leadform.TypeDate:        Date,
	leadform.TypeTime:        Time,
	leadform.TypeFileUpload:  FileUpload,
	leadform.TypeFile:        FileUpload,
	leadform.TypeUpload:      FileUpload,
	leadform.TypeDocument:    FileUpload,
	leadform.TypeInformation: HTML,
	leadform.TypeCaptcha:     Captcha,
}

// URL and website deliberately render as plain text tags in target A, and
// information fields cannot be display-only there.
var markupTags = map[string]string{
	leadform.TypeText:        TagText,
	leadform.TypeEmail:       TagEmail,
	leadform.TypeTextarea:    TagTextarea,
	leadform.TypeTextArea:    TagTextarea,
	leadform.TypeSelect:      TagSelect,
	leadform.TypePicker:      TagSelect,
	leadform.TypeChoiceList:  TagSelect,
	leadform.TypeCheckbox:    TagCheckbox,
	leadform.TypeRadio:       TagRadio,
	leadform.TypeNumber:      TagNumber,
	leadform.TypeDecimal:     TagNumber,
	leadform.TypePhone:       TagTel,
	leadform.TypeURL:         TagText,
	leadform.TypeWebsite:     TagText,
	leadform.TypeDate:        TagDate,
	leadform.TypeFileUpload:  TagFile,
	leadform.TypeFile:        TagFile,
	leadform.TypeUpload:      TagFile,
	leadform.TypeDocument:    TagFile,
	leadform.TypeInformation: TagText,
	leadform.TypeCaptcha:     TagCaptcha,
}

// Map returns the type name in the vocabulary of the given target. Input is
// matched case-insensitively. Unknown types and unknown targets yield text.
func Map(remoteType string, vocabulary target.Target) string {
	key := cases.Fold().String(strings.TrimSpace(remoteType))
	switch vocabulary {
	case target.A:
		if tag, ok := markupTags[key]; ok {
			return tag
		}
		return TagText
	case target.B:
		if typ, ok := structuredTypes[key]; ok {
			return typ
		}
		return Text
	default:
		return Text
	}
}

// Known reports whether the remote type has an explicit mapping.
func Known(remoteType string) bool {
	_, ok := structuredTypes[cases.Fold().String(strings.TrimSpace(remoteType))]
	return ok
}

// IsChoice reports whether a target B type carries a choice list.
func IsChoice(structuredType string) bool {
	switch structuredType {
	case Select, Radio, Checkbox:
		return true
	default:
		return false
	}
}
