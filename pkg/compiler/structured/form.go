// Package structured compiles remote form schemas into target B's field-list
// representation: sequentially numbered fields with per-type attributes plus
// fixed button, confirmation, and notification blocks. The types serialise
// directly to the JSON the form builder stores.
package structured

import "github.com/goliatone/go-formimport/pkg/target"

// Field sizes.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
)

// Choice is one entry of a select, radio, or checkbox list.
type Choice struct {
	Text       string `json:"text"`
	Value      string `json:"value"`
	IsSelected bool   `json:"isSelected"`
}

// Field is a compiled target B field. Type-specific attributes are omitted
// from JSON when unset.
type Field struct {
	ID          int      `json:"id"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	IsRequired  bool     `json:"isRequired"`
	Size        string   `json:"size"`
	InputName   string   `json:"inputName,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Description string   `json:"description,omitempty"`
	Choices     []Choice `json:"choices,omitempty"`

	Content string `json:"content,omitempty"`

	MultipleFiles     *bool  `json:"multipleFiles,omitempty"`
	AllowedExtensions string `json:"allowedExtensions,omitempty"`

	CaptchaType  string `json:"captchaType,omitempty"`
	CaptchaTheme string `json:"captchaTheme,omitempty"`
	CaptchaSize  string `json:"captchaSize,omitempty"`

	DateType         string `json:"dateType,omitempty"`
	DateFormat       string `json:"dateFormat,omitempty"`
	CalendarIconType string `json:"calendarIconType,omitempty"`
	DisablePastDates bool   `json:"disablePastDates,omitempty"`
}

// Button is the submit button block.
type Button struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Confirmation is shown to the submitter after a successful submission.
type Confirmation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

// Notification is mailed to the site owner on submission.
type Notification struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	Event    string `json:"event"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

// Form is the compiled target B representation.
type Form struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Fields        []Field        `json:"fields"`
	Button        Button         `json:"button"`
	Confirmations []Confirmation `json:"confirmations"`
	Notifications []Notification `json:"notifications"`
	Degradations  []string       `json:"degradations,omitempty"`
}

var _ target.Compiled = (*Form)(nil)

func (f *Form) Target() target.Target { return target.B }

func (f *Form) FormTitle() string { return f.Title }

func (f *Form) Degraded() []string { return append([]string(nil), f.Degradations...) }
