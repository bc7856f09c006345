package markup

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/goliatone/go-formimport/pkg/fieldtype"
	"github.com/goliatone/go-formimport/pkg/leadform"
	rendertemplate "github.com/goliatone/go-formimport/pkg/render/template"
	"github.com/goliatone/go-formimport/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formimport/pkg/target"
	"github.com/goliatone/go-formimport/pkg/trace"
)

const (
	stage                = "compile_markup"
	defaultTitle         = "Imported form"
	defaultSubmitLabel   = "Submit"
	notificationPath     = "templates/notification"
	confirmationPath     = "templates/confirmation"
	siteTitlePlaceholder = "[_site_title]"
	siteURLPlaceholder   = "[_site_url]"
	adminPlaceholder     = "[_site_admin_email]"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in mail templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

var (
	defaultEngineOnce sync.Once
	defaultEngine     rendertemplate.TemplateRenderer
	defaultEngineErr  error
)

func sharedEngine() (rendertemplate.TemplateRenderer, error) {
	defaultEngineOnce.Do(func() {
		defaultEngine, defaultEngineErr = gotemplate.New(
			gotemplate.WithFS(embeddedTemplates),
			gotemplate.WithGlobalData(map[string]any{
				"site_title": siteTitlePlaceholder,
				"site_url":   siteURLPlaceholder,
			}),
		)
	})
	return defaultEngine, defaultEngineErr
}

// Option customises the compiler.
type Option func(*Compiler)

// WithTemplateRenderer replaces the embedded mail templates. The renderer
// must resolve "templates/notification" and "templates/confirmation".
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(c *Compiler) {
		if renderer != nil {
			c.templates = renderer
		}
	}
}

// WithEmitter registers a trace emitter.
func WithEmitter(emitter trace.Emitter) Option {
	return func(c *Compiler) {
		c.emitter = trace.OrNop(emitter)
	}
}

// WithSubmitLabel overrides the submit button text.
func WithSubmitLabel(label string) Option {
	return func(c *Compiler) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			c.submitLabel = trimmed
		}
	}
}

// Compiler converts remote schemas into markup forms. It holds no mutable
// state and is safe for concurrent use.
type Compiler struct {
	templates   rendertemplate.TemplateRenderer
	emitter     trace.Emitter
	submitLabel string
}

// New constructs a Compiler.
func New(options ...Option) *Compiler {
	c := &Compiler{
		emitter:     trace.Nop,
		submitLabel: defaultSubmitLabel,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Compile is the package-level shorthand for New().CompileForm with the
// schema name as title.
func Compile(form leadform.Form) *Form {
	return New().CompileForm(context.Background(), form, "")
}

func (c *Compiler) Target() target.Target { return target.A }

// Compile satisfies the compiler registry contract.
func (c *Compiler) Compile(ctx context.Context, form leadform.Form, title string) target.Compiled {
	return c.CompileForm(ctx, form, title)
}

// CompileForm translates the schema. An empty field list yields the default
// contact form (name, email, subject, optional message).
func (c *Compiler) CompileForm(ctx context.Context, form leadform.Form, title string) *Form {
	canonical := form.Canonical()
	out := &Form{
		Title:    resolveTitle(title, canonical.Name),
		Messages: Messages(),
	}

	fields := canonical.Fields
	if len(fields) == 0 {
		fields = fallbackFields()
		out.degrade("empty_fields")
		c.emit(ctx, canonical.ID, trace.KindFallbackForm, "", "no remote fields, using default contact form")
	}

	chunks := make([]string, 0, len(fields)+1)
	mailFields := make([]any, 0, len(fields))
	for index, field := range fields {
		chunks = append(chunks, c.labelBlock(ctx, canonical.ID, index, field, out))
		if name := fieldName(field.Name); name != "" {
			mailFields = append(mailFields, map[string]any{"label": field.Label, "name": name})
		}
	}

	body := strings.Join(chunks, "\n\n")
	if !strings.Contains(body, "["+fieldtype.TagSubmit) {
		body += "\n\n" + fmt.Sprintf("[%s %s]", fieldtype.TagSubmit, quoted(c.submitLabel))
	}
	out.Markup = body

	replyTo := firstEmailField(fields)
	out.Mail = Mail{
		Active:    true,
		Subject:   siteTitlePlaceholder + " " + quoted(out.Title),
		Sender:    fmt.Sprintf("%s <%s>", siteTitlePlaceholder, adminPlaceholder),
		Recipient: adminPlaceholder,
		Body:      c.render(ctx, canonical.ID, notificationPath, out, mailFields),
	}
	if replyTo != "" {
		out.Mail.AdditionalHeaders = fmt.Sprintf("Reply-To: [%s]", replyTo)
	}
	out.Confirmation = Mail{
		Active:            replyTo != "",
		Subject:           siteTitlePlaceholder + " " + quoted(out.Title),
		Sender:            fmt.Sprintf("%s <%s>", siteTitlePlaceholder, adminPlaceholder),
		Recipient:         placeholderOrEmpty(replyTo),
		Body:              c.render(ctx, canonical.ID, confirmationPath, out, nil),
		AdditionalHeaders: fmt.Sprintf("Reply-To: %s", adminPlaceholder),
	}
	return out
}

func (c *Compiler) labelBlock(ctx context.Context, formID string, index int, field leadform.Field, out *Form) string {
	name := fieldName(field.Name)
	if name == "" {
		name = fmt.Sprintf("field-%d", index+1)
	}
	if field.Reclassified {
		c.emit(ctx, formID, trace.KindReclassified, name, "label mentions a document, compiled as file upload")
	}
	if !fieldtype.Known(field.Type) {
		out.degrade("unknown_type:" + name)
		c.emit(ctx, formID, trace.KindUnknownType, name, field.Type)
	}
	if field.Type == leadform.TypeInformation {
		out.degrade("display_only_as_text:" + name)
	}

	tag := inputTag(field, name)
	c.emit(ctx, formID, trace.KindFieldCompiled, name, tag)
	return fmt.Sprintf("<label> %s\n    %s </label>", field.Label, tag)
}

// inputTag picks the DSL tag for a normalized field.
func inputTag(field leadform.Field, name string) string {
	tagName := fieldtype.Map(field.Type, target.A)
	marker := ""
	if field.Required {
		marker = "*"
	}

	switch field.Type {
	case leadform.TypeEmail:
		return fmt.Sprintf("[%s%s %s autocomplete:email]", tagName, marker, name)
	case leadform.TypePhone:
		return fmt.Sprintf("[%s%s %s autocomplete:tel]", tagName, marker, name)
	case leadform.TypeSelect, leadform.TypePicker, leadform.TypeChoiceList, leadform.TypeRadio:
		if len(field.Options) == 0 {
			return fmt.Sprintf("[%s%s %s]", tagName, marker, name)
		}
		return fmt.Sprintf("[%s%s %s %s]", tagName, marker, name, quoted(strings.Join(field.Options, "|")))
	case leadform.TypeCheckbox:
		return fmt.Sprintf("[%s%s %s %s]", tagName, marker, name, quoted(field.Label))
	case leadform.TypeCaptcha:
		return "[" + fieldtype.TagCaptcha + "]"
	case leadform.TypeFileUpload, leadform.TypeFile, leadform.TypeUpload, leadform.TypeDocument:
		if types := fileTypes(field.FileType); types != "" {
			return fmt.Sprintf("[%s%s %s filetypes:%s]", tagName, marker, name, types)
		}
		return fmt.Sprintf("[%s%s %s]", tagName, marker, name)
	}

	if tagName == fieldtype.TagText && isPlainText(field.Type) &&
		(leadform.ContainsFold(field.Name, "name") || leadform.ContainsFold(field.Label, "name")) {
		return fmt.Sprintf("[%s%s %s autocomplete:name]", tagName, marker, name)
	}
	return fmt.Sprintf("[%s%s %s]", tagName, marker, name)
}

// isPlainText excludes the types that render as text tags for compatibility
// reasons; only genuine text and unknown types get the name hint.
func isPlainText(remoteType string) bool {
	switch remoteType {
	case leadform.TypeURL, leadform.TypeWebsite, leadform.TypeInformation:
		return false
	default:
		return true
	}
}

// fileTypes turns "pdf, .DOCX" into "pdf|docx".
func fileTypes(raw string) string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '|' || r == ' ' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return strings.Join(out, "|")
}

func (c *Compiler) render(ctx context.Context, formID, path string, out *Form, fields []any) string {
	engine := c.templates
	if engine == nil {
		shared, err := sharedEngine()
		if err != nil {
			return c.templateFallback(ctx, formID, path, out, fields, err)
		}
		engine = shared
	}

	rendered, err := engine.RenderTemplate(path, map[string]any{
		"title":  out.Title,
		"fields": fields,
	})
	if err != nil {
		return c.templateFallback(ctx, formID, path, out, fields, err)
	}
	return strings.TrimRight(rendered, "\n")
}

func (c *Compiler) templateFallback(ctx context.Context, formID, path string, out *Form, fields []any, err error) string {
	out.degrade("template_fallback:" + path)
	c.emit(ctx, formID, trace.KindTemplateError, "", err.Error())

	lines := make([]string, 0, len(fields))
	for _, raw := range fields {
		entry, _ := raw.(map[string]any)
		lines = append(lines, fmt.Sprintf("%v: [%v]", entry["label"], entry["name"]))
	}
	if len(lines) == 0 {
		return "Thank you for your submission to " + quoted(out.Title) + "."
	}
	return strings.Join(lines, "\n")
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

func fallbackFields() []leadform.Field {
	return []leadform.Field{
		{Name: "your-name", Label: "Your name", Type: leadform.TypeText, Required: true},
		{Name: "your-email", Label: "Your email", Type: leadform.TypeEmail, Required: true},
		{Name: "your-subject", Label: "Subject", Type: leadform.TypeText, Required: true},
		{Name: "your-message", Label: "Your message (optional)", Type: leadform.TypeTextarea},
	}
}

func firstEmailField(fields []leadform.Field) string {
	for _, field := range fields {
		if field.Type != leadform.TypeEmail {
			continue
		}
		if name := fieldName(field.Name); name != "" {
			return name
		}
	}
	return ""
}

// fieldName joins whitespace separated words with underscores so a name
// stays a single token inside a tag or mail placeholder.
func fieldName(raw string) string {
	return strings.Join(strings.Fields(raw), "_")
}

var quoteReplacer = strings.NewReplacer(`"`, "'", "\r\n", " ", "\n", " ", "\r", " ")

// quoted wraps a DSL value in double quotes. The tag grammar has no escape
// sequence, so inner double quotes become single quotes and line breaks
// become spaces.
func quoted(value string) string {
	return `"` + quoteReplacer.Replace(value) + `"`
}

func placeholderOrEmpty(name string) string {
	if name == "" {
		return ""
	}
	return "[" + name + "]"
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
