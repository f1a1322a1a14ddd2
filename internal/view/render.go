package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/agentstation/userdetails/pkg/form"
	"github.com/agentstation/userdetails/pkg/profile"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Option is a gender choice in the page's selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// TechStackEntry is one row of the tech stack list.
type TechStackEntry struct {
	Index     int
	Value     string
	Error     string
	Removable bool
}

// Page is the data behind the HTML page.
type Page struct {
	Form      form.Snapshot
	Genders   []Option
	TechStack []TechStackEntry
	Display   []Line
	// RefreshSeconds is set while a submission is pending so the page
	// reloads once it completes.
	RefreshSeconds int
	StreamPath     string
}

// NewPage assembles page data from a form snapshot and the displayed lines.
func NewPage(snap form.Snapshot, display []Line, streamPath string) Page {
	page := Page{
		Form:       snap,
		Display:    display,
		StreamPath: streamPath,
	}

	page.Genders = append(page.Genders, Option{Value: "", Label: profile.GenderPlaceholder, Selected: snap.Values.Gender == ""})
	for _, g := range profile.Genders() {
		page.Genders = append(page.Genders, Option{
			Value:    string(g),
			Label:    g.Label(),
			Selected: snap.Values.Gender == string(g),
		})
	}

	for i, v := range snap.Values.TechStack {
		page.TechStack = append(page.TechStack, TechStackEntry{
			Index:     i,
			Value:     v,
			Error:     snap.Errors[profile.TechStackField(i)],
			Removable: i > 0,
		})
	}

	if snap.PendingTill != nil {
		page.RefreshSeconds = int(math.Ceil(time.Until(*snap.PendingTill).Seconds()))
		if page.RefreshSeconds < 1 {
			page.RefreshSeconds = 1
		}
	}
	return page
}

// Renderer renders the HTML page and the display fragment.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
	}).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Page writes the full page.
func (r *Renderer) Page(w io.Writer, page Page) error {
	return r.tmpl.ExecuteTemplate(w, "page.html.tmpl", page)
}

// Display writes only the display section. Nothing is written when lines
// is empty.
func (r *Renderer) Display(w io.Writer, lines []Line) error {
	return r.tmpl.ExecuteTemplate(w, "display.html.tmpl", lines)
}
