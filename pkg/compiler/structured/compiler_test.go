package structured_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"

	"github.com/goliatone/go-formimport/pkg/compiler/structured"
	"github.com/goliatone/go-formimport/pkg/leadform"
	"github.com/goliatone/go-formimport/pkg/testsupport"
	"github.com/goliatone/go-formimport/pkg/trace"
)

func TestCompile_ContactGolden(t *testing.T) {
	form := testsupport.LoadRemoteForm(t, filepath.Join("testdata", "contact.json"))
	out := structured.New().CompileForm(testsupport.Context(), form, "")

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "contact_structured", testsupport.MustJSON(t, out))
}

func TestCompile_EmptyFields(t *testing.T) {
	t.Parallel()

	out := structured.Compile(leadform.Form{ID: "empty"}, "Empty")
	if out.Fields == nil || len(out.Fields) != 0 {
		t.Fatalf("expected empty non-nil field list, got %#v", out.Fields)
	}
	if len(out.Confirmations) != 1 || len(out.Notifications) != 1 {
		t.Fatalf("fixed blocks must be present")
	}
	if diff := cmp.Diff([]string{"empty_fields"}, out.Degraded()); diff != "" {
		t.Fatalf("degradations mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(testsupport.MustJSON(t, out)), `"fields": []`) {
		t.Fatalf("empty list should serialise as []")
	}
}

func TestCompile_SequentialIDsAndSize(t *testing.T) {
	t.Parallel()

	out := structured.Compile(leadform.Form{Fields: []leadform.Field{
		{Name: "a", Type: "text", HalfWidth: true},
		{Name: "b", Type: "text"},
		{Name: "c", Type: "email", Required: true},
	}}, "T")

	type shape struct {
		ID       int
		Size     string
		Required bool
	}
	var got []shape
	for _, f := range out.Fields {
		got = append(got, shape{f.ID, f.Size, f.IsRequired})
	}
	want := []shape{
		{1, structured.SizeSmall, false},
		{2, structured.SizeMedium, false},
		{3, structured.SizeMedium, true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_TypeSpecificAttributes(t *testing.T) {
	t.Parallel()

	no := false
	cases := []struct {
		name  string
		field leadform.Field
		want  structured.Field
	}{
		{
			name:  "Radio",
			field: leadform.Field{Name: "size", Label: "Size", Type: "radio", Options: []string{"S", "M"}},
			want: structured.Field{ID: 1, Label: "Size", Type: "radio", Size: "medium", InputName: "size", Choices: []structured.Choice{
				{Text: "S", Value: "S"}, {Text: "M", Value: "M"},
			}},
		},
		{
			name:  "ScalarOptionsGiveEmptyChoices",
			field: leadform.FromMap(map[string]any{"fields": []any{map[string]any{"name": "p", "type": "picker", "options": "Red"}}}).Fields[0],
			want:  structured.Field{ID: 1, Label: "p", Type: "select", Size: "medium", InputName: "p", Choices: []structured.Choice{}},
		},
		{
			name:  "File",
			field: leadform.Field{Name: "cv", Label: "CV", Type: "file_upload", FileType: ".PDF | docx"},
			want:  structured.Field{ID: 1, Label: "CV", Type: "fileupload", Size: "medium", InputName: "cv", MultipleFiles: &no, AllowedExtensions: "pdf,docx"},
		},
		{
			name:  "Captcha",
			field: leadform.Field{Name: "bot", Label: "Robot", Type: "captcha"},
			want: structured.Field{ID: 1, Label: "Robot", Type: "captcha", Size: "medium", InputName: "bot",
				CaptchaType: "recaptcha", CaptchaTheme: "light", CaptchaSize: "normal"},
		},
		{
			name:  "DateWithoutHint",
			field: leadform.Field{Name: "d", Label: "Day", Type: "date"},
			want:  structured.Field{ID: 1, Label: "Day", Type: "date", Size: "medium", InputName: "d"},
		},
		{
			name:  "DatePicker",
			field: leadform.Field{Name: "d", Label: "Day", Type: "date", DisablePastDates: true},
			want: structured.Field{ID: 1, Label: "Day", Type: "date", Size: "medium", InputName: "d",
				DateType: "datepicker", DateFormat: "mdy", CalendarIconType: "calendar", DisablePastDates: true},
		},
		{
			name:  "InformationFallsBackToLabel",
			field: leadform.Field{Name: "intro", Label: "Welcome", Type: "information"},
			want:  structured.Field{ID: 1, Label: "Welcome", Type: "html", Size: "medium", InputName: "intro", Content: "Welcome"},
		},
		{
			name:  "UnknownIsText",
			field: leadform.Field{Name: "x", Label: "X", Type: "frobnicate"},
			want:  structured.Field{ID: 1, Label: "X", Type: "text", Size: "medium", InputName: "x"},
		},
		{
			name:  "DocumentHeuristic",
			field: leadform.Field{Name: "doc", Label: "Identity DOCUMENT", Type: "text"},
			want:  structured.Field{ID: 1, Label: "Identity DOCUMENT", Type: "fileupload", Size: "medium", InputName: "doc", MultipleFiles: &no},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := structured.Compile(leadform.Form{Fields: []leadform.Field{tc.field}}, "T")
			if len(out.Fields) != 1 {
				t.Fatalf("expected one field, got %d", len(out.Fields))
			}
			if diff := cmp.Diff(tc.want, out.Fields[0]); diff != "" {
				t.Fatalf("field mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile_SanitizesDisplayContent(t *testing.T) {
	t.Parallel()

	rec := &trace.Recorder{}
	out := structured.New(structured.WithEmitter(rec)).CompileForm(testsupport.Context(), leadform.Form{
		Fields: []leadform.Field{{
			Name:    "intro",
			Type:    "information",
			Content: `<p onclick="x()">Hello <strong>there</strong></p><script>alert(1)</script>`,
		}},
	}, "T")

	if diff := cmp.Diff("<p>Hello <strong>there</strong></p>", out.Fields[0].Content); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}
	if !rec.Has(trace.KindSanitized) {
		t.Fatalf("expected sanitized event, got %v", rec.Kinds())
	}
}

func TestCompile_FixedBlocks(t *testing.T) {
	t.Parallel()

	out := structured.New(
		structured.WithAdminEmail("owner@example.com"),
		structured.WithButtonText("Send"),
	).CompileForm(testsupport.Context(), leadform.Form{Name: "Remote Name"}, "  ")

	if out.Title != "Remote Name" {
		t.Fatalf("expected remote name as title, got %q", out.Title)
	}
	if diff := cmp.Diff(structured.Button{Type: "text", Text: "Send"}, out.Button); diff != "" {
		t.Fatalf("button mismatch (-want +got):\n%s", diff)
	}
	confirmation := out.Confirmations[0]
	if !confirmation.IsDefault || !strings.HasPrefix(confirmation.Message, "Thanks") {
		t.Fatalf("unexpected confirmation %+v", confirmation)
	}
	wantNotification := structured.Notification{
		ID:       "admin",
		Name:     "Admin Notification",
		IsActive: true,
		Event:    "form_submission",
		To:       "owner@example.com",
		Subject:  "New submission from Remote Name",
		Message:  "{all_fields}",
	}
	if diff := cmp.Diff(wantNotification, out.Notifications[0]); diff != "" {
		t.Fatalf("notification mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_TraceEvents(t *testing.T) {
	t.Parallel()

	rec := &trace.Recorder{}
	out := structured.New(structured.WithEmitter(rec)).CompileForm(testsupport.Context(), leadform.Form{
		ID: "f",
		Fields: []leadform.Field{
			{Name: "doc", Label: "Passport document", Type: "text"},
			{Name: "odd", Type: "frobnicate"},
		},
	}, "T")

	for _, kind := range []string{trace.KindReclassified, trace.KindUnknownType, trace.KindFieldCompiled} {
		if !rec.Has(kind) {
			t.Fatalf("expected %s event, got %v", kind, rec.Kinds())
		}
	}
	if diff := cmp.Diff([]string{"unknown_type:odd"}, out.Degraded()); diff != "" {
		t.Fatalf("degradations mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_Idempotent(t *testing.T) {
	t.Parallel()

	form := testsupport.LoadRemoteForm(t, filepath.Join("testdata", "contact.json"))
	if diff := cmp.Diff(structured.Compile(form, ""), structured.Compile(form, "")); diff != "" {
		t.Fatalf("compilation is not deterministic (-first +second):\n%s", diff)
	}
}
