package echoapi

import (
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	layoutTemplate = "templates/layout.html"
	pagesGlob      = "templates/pages/*.html"
)

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
}

// templateRenderer renders pages by name, each within the shared layout.
type templateRenderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

func parseTemplates(fsys fs.FS) (*templateRenderer, error) {
	files, err := fs.Glob(fsys, pagesGlob)
	if err != nil {
		return nil, errors.Wrap(err, "listing pages")
	}

	r := &templateRenderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), path.Ext(file))
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(fsys, layoutTemplate, file)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing page %s", name)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// newTemplateRenderer panics on invalid templates: they are embedded, so this is a build defect.
func newTemplateRenderer(fsys fs.FS) *templateRenderer {
	r, err := parseTemplates(fsys)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, ctx echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
