// Package markup compiles remote form schemas into target A's markup DSL: an
// ordered run of label blocks, each wrapping one bracketed input tag such as
// [email* email_addr autocomplete:email], followed by a submit tag.
//
// Alongside the markup, every compiled form carries an owner notification
// mail, a submitter confirmation mail, and the validation messages the form
// builder shows. Compilation never fails; edge cases degrade to default
// fields or a default form and are reported through Degradations.
package markup

import (
	"github.com/goliatone/go-formimport/pkg/target"
)

// Mail is a mail template with bracketed field placeholders.
type Mail struct {
	Active            bool   `json:"active"`
	Subject           string `json:"subject"`
	Sender            string `json:"sender"`
	Recipient         string `json:"recipient"`
	Body              string `json:"body"`
	AdditionalHeaders string `json:"additional_headers,omitempty"`
}

// Form is the compiled target A representation.
type Form struct {
	Title        string            `json:"title"`
	Markup       string            `json:"form"`
	Mail         Mail              `json:"mail"`
	Confirmation Mail              `json:"mail_2"`
	Messages     map[string]string `json:"messages"`
	Degradations []string          `json:"degradations,omitempty"`
}

var _ target.Compiled = (*Form)(nil)

func (f *Form) Target() target.Target { return target.A }

func (f *Form) FormTitle() string { return f.Title }

func (f *Form) Degraded() []string { return append([]string(nil), f.Degradations...) }

// Validation and status messages shipped with every compiled form.
var defaultMessages = map[string]string{
	"mail_sent_ok":             "Thank you for your message. It has been sent.",
	"mail_sent_ng":             "There was an error trying to send your message. Please try again later.",
	"validation_error":         "One or more fields have an error. Please check and try again.",
	"spam":                     "There was an error trying to send your message. Please try again later.",
	"accept_terms":             "You must accept the terms and conditions before sending your message.",
	"invalid_required":         "Please fill out this field.",
	"invalid_too_long":         "This field has a too long input.",
	"invalid_too_short":        "This field has a too short input.",
	"invalid_email":            "Please enter an email address.",
	"invalid_url":              "Please enter a URL.",
	"invalid_tel":              "Please enter a telephone number.",
	"invalid_number":           "Please enter a number.",
	"invalid_date":             "Please enter a date in YYYY-MM-DD format.",
	"upload_failed":            "There was an unknown error uploading the file.",
	"upload_file_type_invalid": "You are not allowed to upload files of this type.",
	"upload_file_too_large":    "The uploaded file is too large.",
	"captcha_not_match":        "Your entered code is incorrect.",
}

// Messages returns a copy of the fixed validation message set.
func Messages() map[string]string {
	out := make(map[string]string, len(defaultMessages))
	for key, value := range defaultMessages {
		out[key] = value
	}
	return out
}
