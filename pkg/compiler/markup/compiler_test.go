package markup_test

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"

	"github.com/goliatone/go-formimport/pkg/compiler/markup"
	"github.com/goliatone/go-formimport/pkg/leadform"
	"github.com/goliatone/go-formimport/pkg/testsupport"
	"github.com/goliatone/go-formimport/pkg/trace"
)

func TestCompile_ContactGolden(t *testing.T) {
	form := testsupport.LoadRemoteForm(t, filepath.Join("testdata", "contact.json"))
	out := markup.New().CompileForm(testsupport.Context(), form, "")

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "contact_markup", []byte(out.Markup))
	g.Assert(t, "contact_notification", []byte(out.Mail.Body))

	if out.Title != "Contact Us" {
		t.Fatalf("title: want %q, got %q", "Contact Us", out.Title)
	}
	if out.Mail.AdditionalHeaders != "Reply-To: [email_addr]" {
		t.Fatalf("unexpected reply-to header %q", out.Mail.AdditionalHeaders)
	}
	if !out.Confirmation.Active || out.Confirmation.Recipient != "[email_addr]" {
		t.Fatalf("confirmation should target the email field, got %+v", out.Confirmation)
	}
	if !strings.Contains(out.Confirmation.Body, `"Contact Us"`) {
		t.Fatalf("confirmation body missing title: %q", out.Confirmation.Body)
	}
}

func TestCompile_EmptyFieldsFallback(t *testing.T) {
	t.Parallel()

	out := markup.Compile(leadform.Form{ID: "empty", Name: "Empty"})

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "fallback_markup", []byte(out.Markup))

	if !strings.Contains(out.Markup, "[submit") {
		t.Fatalf("fallback form must contain a submit control")
	}
	if diff := cmp.Diff([]string{"empty_fields"}, out.Degraded()); diff != "" {
		t.Fatalf("degradations mismatch (-want +got):\n%s", diff)
	}
	for _, placeholder := range []string{"[your-name]", "[your-email]", "[your-subject]", "[your-message]"} {
		if !strings.Contains(out.Mail.Body, placeholder) {
			t.Fatalf("notification body missing %s:\n%s", placeholder, out.Mail.Body)
		}
	}
}

func TestCompile_RequiredEmailScenario(t *testing.T) {
	t.Parallel()

	out := markup.Compile(leadform.Form{
		Fields: []leadform.Field{{Name: "email_addr", Label: "Email", Type: "email", Required: true}},
	})

	want := "<label> Email\n    [email* email_addr autocomplete:email] </label>\n\n[submit \"Submit\"]"
	if diff := cmp.Diff(want, out.Markup); diff != "" {
		t.Fatalf("markup mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_TagSelection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		field leadform.Field
		want  string
	}{
		{"Number", leadform.Field{Name: "qty", Type: "decimal", Required: true}, "[number* qty]"},
		{"Date", leadform.Field{Name: "when", Type: "date"}, "[date when]"},
		{"Radio", leadform.Field{Name: "size", Type: "radio", Options: []string{"S", "M"}}, `[radio size "S|M"]`},
		{"RadioWithoutOptions", leadform.Field{Name: "size", Type: "radio"}, "[radio size]"},
		{"Picker", leadform.Field{Name: "pick", Type: "picker", Options: []string{"A"}}, `[select pick "A"]`},
		{"URLIsPlainText", leadform.Field{Name: "company_name_url", Type: "url"}, "[text company_name_url]"},
		{"InformationIsText", leadform.Field{Name: "intro", Label: "Intro", Type: "information"}, "[text intro]"},
		{"CaptchaIgnoresName", leadform.Field{Name: "robot", Type: "captcha", Required: true}, "[recaptcha]"},
		{"FileTypes", leadform.Field{Name: "resume", Type: "file_upload", FileType: ".PDF, docx"}, "[file resume filetypes:pdf|docx]"},
		{"UnknownType", leadform.Field{Name: "thing", Label: "Thing", Type: "frobnicate"}, "[text thing]"},
		{"NameHintFromLabel", leadform.Field{Name: "who", Label: "Company Name", Type: "text"}, "[text who autocomplete:name]"},
		{"DocumentHeuristic", leadform.Field{Name: "doc", Label: "Upload Document", Type: "text"}, "[file doc]"},
		{"EmptyNameGetsPosition", leadform.Field{Label: "Anonymous", Type: "text"}, "[text field-1]"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := markup.Compile(leadform.Form{Fields: []leadform.Field{tc.field}})
			if !strings.Contains(out.Markup, tc.want+" </label>") {
				t.Fatalf("expected %s in markup:\n%s", tc.want, out.Markup)
			}
		})
	}
}

func TestCompile_QuotedValuesAndNames(t *testing.T) {
	t.Parallel()

	out := markup.New().CompileForm(testsupport.Context(), leadform.Form{
		Fields: []leadform.Field{
			{Name: "work email", Label: "Email", Type: "email", Required: true},
			{Name: "terms", Label: `I accept the "Terms"`, Type: "checkbox"},
			{Name: "size", Type: "select", Options: []string{`12" pipe`, "Other"}},
		},
	}, `The "Best" form`)

	for _, want := range []string{
		"[email* work_email autocomplete:email]",
		`[checkbox terms "I accept the 'Terms'"]`,
		`[select size "12' pipe|Other"]`,
	} {
		if !strings.Contains(out.Markup, want) {
			t.Fatalf("expected %s in markup:\n%s", want, out.Markup)
		}
	}
	if strings.Contains(out.Markup, `\"`) {
		t.Fatalf("markup contains escaped quotes:\n%s", out.Markup)
	}
	if want := `[_site_title] "The 'Best' form"`; out.Mail.Subject != want {
		t.Fatalf("want subject %q, got %q", want, out.Mail.Subject)
	}
	if out.Confirmation.Recipient != "[work_email]" {
		t.Fatalf("unexpected confirmation recipient %q", out.Confirmation.Recipient)
	}
	if !strings.Contains(out.Mail.Body, "Email: [work_email]") {
		t.Fatalf("notification should use the sanitized name:\n%s", out.Mail.Body)
	}
}

func TestCompile_ScalarOptionsProduceNoOptions(t *testing.T) {
	t.Parallel()

	form := leadform.FromMap(map[string]any{
		"fields": []any{map[string]any{"name": "pick", "type": "select", "options": "Red"}},
	})
	out := markup.Compile(form)
	if !strings.Contains(out.Markup, "[select pick]") {
		t.Fatalf("expected option-less select, got:\n%s", out.Markup)
	}
}

func TestCompile_NotificationSkipsUnnamedFields(t *testing.T) {
	t.Parallel()

	out := markup.Compile(leadform.Form{Fields: []leadform.Field{
		{Name: "", Label: "Ghost", Type: "text"},
		{Name: "real", Label: "Real", Type: "text"},
	}})
	if strings.Contains(out.Mail.Body, "Ghost") {
		t.Fatalf("unnamed field leaked into notification:\n%s", out.Mail.Body)
	}
	if !strings.Contains(out.Mail.Body, "Real: [real]") {
		t.Fatalf("named field missing from notification:\n%s", out.Mail.Body)
	}
	if out.Confirmation.Active {
		t.Fatalf("confirmation must be inactive without an email field")
	}
}

func TestCompile_Idempotent(t *testing.T) {
	t.Parallel()

	form := testsupport.LoadRemoteForm(t, filepath.Join("testdata", "contact.json"))
	first := markup.Compile(form)
	second := markup.Compile(form)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("compilation is not deterministic (-first +second):\n%s", diff)
	}
}

func TestCompile_ConcurrentUse(t *testing.T) {
	t.Parallel()

	form := testsupport.LoadRemoteForm(t, filepath.Join("testdata", "contact.json"))
	compiler := markup.New()
	want := compiler.CompileForm(testsupport.Context(), form, "T").Markup

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := compiler.CompileForm(testsupport.Context(), form, "T").Markup; got != want {
				t.Errorf("concurrent compile diverged")
			}
		}()
	}
	wg.Wait()
}

func TestCompile_EmitsTraceEvents(t *testing.T) {
	t.Parallel()

	rec := &trace.Recorder{}
	out := markup.New(markup.WithEmitter(rec)).CompileForm(testsupport.Context(), leadform.Form{
		ID: "f",
		Fields: []leadform.Field{
			{Name: "doc", Label: "Passport document", Type: "text"},
			{Name: "odd", Type: "frobnicate"},
			{Name: "intro", Type: "information"},
		},
	}, "Title")

	for _, kind := range []string{trace.KindReclassified, trace.KindUnknownType, trace.KindFieldCompiled} {
		if !rec.Has(kind) {
			t.Fatalf("expected %s event, got %v", kind, rec.Kinds())
		}
	}
	want := []string{"unknown_type:odd", "display_only_as_text:intro"}
	if diff := cmp.Diff(want, out.Degraded()); diff != "" {
		t.Fatalf("degradations mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_TemplateFailureDegrades(t *testing.T) {
	t.Parallel()

	rec := &trace.Recorder{}
	compiler := markup.New(markup.WithTemplateRenderer(failingRenderer{}), markup.WithEmitter(rec))
	out := compiler.CompileForm(testsupport.Context(), leadform.Form{
		Fields: []leadform.Field{{Name: "email", Label: "Email", Type: "email"}},
	}, "T")

	if out.Mail.Body != "Email: [email]" {
		t.Fatalf("unexpected fallback body %q", out.Mail.Body)
	}
	if !rec.Has(trace.KindTemplateError) {
		t.Fatalf("expected template error event")
	}
	if len(out.Degraded()) != 2 {
		t.Fatalf("expected both templates to degrade, got %v", out.Degraded())
	}
}

func TestCompile_CustomSubmitLabel(t *testing.T) {
	t.Parallel()

	out := markup.New(markup.WithSubmitLabel("Send")).CompileForm(testsupport.Context(), leadform.Form{}, "")
	if !strings.HasSuffix(out.Markup, `[submit "Send"]`) {
		t.Fatalf("unexpected submit tag in:\n%s", out.Markup)
	}
	if out.Title != "Imported form" {
		t.Fatalf("expected default title, got %q", out.Title)
	}
}

type failingRenderer struct{}

func (failingRenderer) Render(string, any, ...io.Writer) (string, error) {
	return "", errors.New("boom")
}

func (failingRenderer) RenderTemplate(string, any, ...io.Writer) (string, error) {
	return "", errors.New("boom")
}

func (failingRenderer) RenderString(string, any, ...io.Writer) (string, error) {
	return "", errors.New("boom")
}

func (failingRenderer) GlobalContext(any) error { return nil }
