package fieldtype_test

import (
	"testing"

	"github.com/goliatone/go-formimport/pkg/fieldtype"
	"github.com/goliatone/go-formimport/pkg/target"
)

func TestMap_Structured(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"text":        "text",
		"EMAIL":       "email",
		"text_area":   "textarea",
		"picker":      "select",
		"choice_list": "select",
		"decimal":     "number",
		"phone":       "phone",
		"website":     "url",
		"time":        "time",
		"document":    "fileupload",
		"upload":      "fileupload",
		"information": "html",
		"captcha":     "captcha",
		"frobnicate":  "text",
		"":            "text",
	}
	for input, want := range cases {
		if got := fieldtype.Map(input, target.B); got != want {
			t.Errorf("Map(%q, B): want %q, got %q", input, want, got)
		}
	}
}

func TestMap_Markup(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"email":       fieldtype.TagEmail,
		"phone":       fieldtype.TagTel,
		"url":         fieldtype.TagText,
		"information": fieldtype.TagText,
		"file_upload": fieldtype.TagFile,
		"frobnicate":  fieldtype.TagText,
	}
	for input, want := range cases {
		if got := fieldtype.Map(input, target.A); got != want {
			t.Errorf("Map(%q, A): want %q, got %q", input, want, got)
		}
	}
}

func TestKnownAndChoice(t *testing.T) {
	t.Parallel()

	if fieldtype.Known("frobnicate") {
		t.Fatalf("frobnicate must be unknown")
	}
	if !fieldtype.Known("Radio") {
		t.Fatalf("radio must be known")
	}
	if !fieldtype.IsChoice(fieldtype.Checkbox) || fieldtype.IsChoice(fieldtype.Text) {
		t.Fatalf("unexpected choice classification")
	}
}
