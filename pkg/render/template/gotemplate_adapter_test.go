package template_test

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formimport/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formimport/pkg/testsupport"
)

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("mail", map[string]any{
			"fields": []any{
				map[string]any{"label": "Email", "name": "email_addr"},
				map[string]any{"label": "R&D", "name": "dept"},
			},
		}, w)
	})

	want := "Email: [email_addr]\nR&D: [dept]\n"
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{"site": "[_site_title]"}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.Render("{{ site }} / {{ title|trim }}", map[string]any{"title": "  Contact "})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if want := "[_site_title] / Contact"; result != want {
		t.Fatalf("want %q, got %q", want, result)
	}
}

func TestGoTemplateEngine_StructData(t *testing.T) {
	engine := newEngine(t)

	type row struct {
		Label string `json:"label"`
		Name  string `json:"name"`
	}
	result, err := engine.RenderTemplate("mail.tpl", map[string]any{"fields": []row{{Label: "Phone", Name: "tel"}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "Phone: [tel]\n"; result != want {
		t.Fatalf("want %q, got %q", want, result)
	}
}

func TestGoTemplateEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}

func TestGoTemplateEngine_ConcurrentConstruction(t *testing.T) {
	t.Parallel()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			files := fstest.MapFS{
				"row.tpl": &fstest.MapFile{Data: []byte("{{ name|placeholder }}|{{ label|trim }}")},
			}
			engine, err := gotemplate.New(gotemplate.WithFS(files))
			if err != nil {
				errs <- err
				return
			}
			name := fmt.Sprintf("field_%d", i)
			got, err := engine.RenderTemplate("row", map[string]any{"name": name, "label": " Label "})
			if err != nil {
				errs <- err
				return
			}
			if want := "[" + name + "]|Label"; got != want {
				errs <- fmt.Errorf("want %q, got %q", want, got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	files := fstest.MapFS{
		"mail.tpl": &fstest.MapFile{
			Data: []byte("{% autoescape off %}{% for field in fields %}{{ field.label }}: {{ field.name|placeholder }}\n{% endfor %}{% endautoescape %}"),
		},
	}
	engine, err := gotemplate.New(gotemplate.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
