package structured

import (
	"context"
	"strings"

	"github.com/goliatone/go-formimport/pkg/fieldtype"
	"github.com/goliatone/go-formimport/pkg/leadform"
	"github.com/goliatone/go-formimport/pkg/target"
	"github.com/goliatone/go-formimport/pkg/trace"
)

const (
	stage                  = "compile_structured"
	defaultTitle           = "Imported form"
	defaultButtonText      = "Submit"
	defaultAdminEmail      = "{admin_email}"
	defaultConfirmation    = "Thanks for contacting us! We will get in touch with you shortly."
	allFieldsPlaceholder   = "{all_fields}"
	defaultCaptchaType     = "recaptcha"
	defaultCaptchaTheme    = "light"
	defaultCaptchaSize     = "normal"
	datePickerType         = "datepicker"
	datePickerFormat       = "mdy"
	datePickerCalendarIcon = "calendar"
)

// Option customises the compiler.
type Option func(*Compiler)

// WithEmitter registers a trace emitter.
func WithEmitter(emitter trace.Emitter) Option {
	return func(c *Compiler) {
		c.emitter = trace.OrNop(emitter)
	}
}

// WithAdminEmail sets the notification recipient. Defaults to the
// {admin_email} merge tag.
func WithAdminEmail(address string) Option {
	return func(c *Compiler) {
		if trimmed := strings.TrimSpace(address); trimmed != "" {
			c.adminEmail = trimmed
		}
	}
}

// WithButtonText overrides the submit button text.
func WithButtonText(text string) Option {
	return func(c *Compiler) {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			c.buttonText = trimmed
		}
	}
}

// Compiler converts remote schemas into structured forms. Safe for
// concurrent use.
type Compiler struct {
	emitter    trace.Emitter
	adminEmail string
	buttonText string
}

// New constructs a Compiler.
func New(options ...Option) *Compiler {
	c := &Compiler{
		emitter:    trace.Nop,
		adminEmail: defaultAdminEmail,
		buttonText: defaultButtonText,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Compile is the package-level shorthand for New().CompileForm.
func Compile(form leadform.Form, title string) *Form {
	return New().CompileForm(context.Background(), form, title)
}

func (c *Compiler) Target() target.Target { return target.B }

// Compile satisfies the compiler registry contract.
func (c *Compiler) Compile(ctx context.Context, form leadform.Form, title string) target.Compiled {
	return c.CompileForm(ctx, form, title)
}

// CompileForm translates the schema. Field ids start at 1 and follow the
// remote order. An empty remote field list yields an empty field list.
func (c *Compiler) CompileForm(ctx context.Context, form leadform.Form, title string) *Form {
	canonical := form.Canonical()
	resolved := resolveTitle(title, canonical.Name)

	out := &Form{
		Title:       resolved,
		Description: canonical.Description,
		Fields:      make([]Field, 0, len(canonical.Fields)),
		Button:      Button{Type: "text", Text: c.buttonText},
	}

	if len(canonical.Fields) == 0 {
		out.degrade("empty_fields")
		c.emit(ctx, canonical.ID, trace.KindFallbackForm, "", "no remote fields, compiled an empty field list")
	}
	for index, remote := range canonical.Fields {
		out.Fields = append(out.Fields, c.compileField(ctx, canonical.ID, index+1, remote, out))
	}

	message := strings.TrimSpace(canonical.CompletionText)
	if message == "" {
		message = defaultConfirmation
	}
	out.Confirmations = []Confirmation{{
		ID:        "default",
		Name:      "Default Confirmation",
		IsDefault: true,
		Type:      "message",
		Message:   message,
	}}
	out.Notifications = []Notification{{
		ID:       "admin",
		Name:     "Admin Notification",
		IsActive: true,
		Event:    "form_submission",
		To:       c.adminEmail,
		Subject:  "New submission from " + resolved,
		Message:  allFieldsPlaceholder,
	}}
	return out
}

func (c *Compiler) compileField(ctx context.Context, formID string, id int, remote leadform.Field, out *Form) Field {
	if remote.Reclassified {
		c.emit(ctx, formID, trace.KindReclassified, remote.Name, "label mentions a document, compiled as file upload")
	}
	if !fieldtype.Known(remote.Type) {
		out.degrade("unknown_type:" + remote.Name)
		c.emit(ctx, formID, trace.KindUnknownType, remote.Name, remote.Type)
	}

	field := Field{
		ID:          id,
		Label:       remote.Label,
		Type:        fieldtype.Map(remote.Type, target.B),
		IsRequired:  remote.Required,
		Size:        SizeMedium,
		InputName:   remote.Name,
		Placeholder: remote.Placeholder,
		Description: remote.Description,
	}
	if remote.HalfWidth {
		field.Size = SizeSmall
	}

	switch {
	case fieldtype.IsChoice(field.Type):
		field.Choices = choicesFrom(remote.Options)
	case field.Type == fieldtype.HTML:
		raw := remote.Content
		if strings.TrimSpace(raw) == "" {
			raw = remote.Label
		}
		field.Content = sanitizeContent(raw)
		if field.Content != strings.TrimSpace(raw) {
			c.emit(ctx, formID, trace.KindSanitized, remote.Name, "display content altered by sanitizer")
		}
	case field.Type == fieldtype.FileUpload:
		multiple := false
		field.MultipleFiles = &multiple
		field.AllowedExtensions = extensions(remote.FileType)
	case field.Type == fieldtype.Captcha:
		field.CaptchaType = defaultCaptchaType
		field.CaptchaTheme = defaultCaptchaTheme
		field.CaptchaSize = defaultCaptchaSize
	case field.Type == fieldtype.Date && remote.DisablePastDates:
		field.DateType = datePickerType
		field.DateFormat = datePickerFormat
		field.CalendarIconType = datePickerCalendarIcon
		field.DisablePastDates = true
	}

	c.emit(ctx, formID, trace.KindFieldCompiled, remote.Name, field.Type)
	return field
}

func choicesFrom(options []string) []Choice {
	choices := make([]Choice, 0, len(options))
	for _, option := range options {
		choices = append(choices, Choice{Text: option, Value: option})
	}
	return choices
}

// extensions turns ".PDF | docx" into "pdf,docx".
func extensions(raw string) string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '|' || r == ' ' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if ext := strings.ToLower(strings.TrimPrefix(part, ".")); ext != "" {
			out = append(out, ext)
		}
	}
	return strings.Join(out, ",")
}

func (c *Compiler) emit(ctx context.Context, formID, kind, field, detail string) {
	c.emitter.Emit(ctx, trace.Event{
		Stage:  stage,
		Kind:   kind,
		FormID: formID,
		Field:  field,
		Detail: detail,
	})
}

func (f *Form) degrade(reason string) {
	f.Degradations = append(f.Degradations, reason)
}

func resolveTitle(title, name string) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return defaultTitle
}
