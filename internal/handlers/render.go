package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"memorial/internal/config"
	"memorial/internal/database"
	"memorial/internal/submissions"
	"memorial/pkg/logger"
	"memorial/pkg/render"
	"memorial/pkg/utils"
)

var pageNames = []string{"list", "password", "edit"}

type renderer struct {
	pages map[string]*template.Template
	site  siteView
}

// siteView is the config derived header and footer data shared by all pages.
type siteView struct {
	Title       string
	Subtitle    string
	Description string
	PersonImage string
	Theme       string
	HeaderStyle template.CSS
	BodyStyle   template.CSS

	ContactUser   string
	ContactDomain string
	ContactPrompt string

	FooterText   template.HTML
	DonationText template.HTML
}

// view is the data handed to every template.
type view struct {
	Site  siteView
	Title string

	// list
	Page            *submissions.Page
	RequireApproval bool

	// password
	Next  string
	Error string

	// edit
	Draft     *database.Submission
	Links     []submissions.LinkInput
	Errors    submissions.ValidationErrors
	Saved     bool
	MaxUpload string
}

func newRenderer(assets fs.FS, conf *config.Config, mediaURL func(key string) string) (*renderer, error) {
	loc := time.Local
	if conf.Site.Timezone != "" {
		if l, err := time.LoadLocation(conf.Site.Timezone); err == nil {
			loc = l
		}
	}

	funcs := template.FuncMap{
		"markdown": render.Markdown,
		"initials": utils.Initials,
		"badge":    badgeStyle,
		"embed":    func(s string) template.HTML { return template.HTML(s) },
		"media":    mediaURL,
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.In(loc).Format("January 2, 2006")
		},
	}

	r := &renderer{pages: make(map[string]*template.Template), site: buildSite(conf)}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(assets,
			"web/templates/base.html",
			"web/templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func buildSite(conf *config.Config) siteView {
	site := conf.Site
	v := siteView{
		Title:         site.Title,
		Subtitle:      site.Subtitle,
		Description:   site.Description,
		PersonImage:   assetURL(site.PersonImage),
		Theme:         site.Theme,
		ContactPrompt: site.ContactPrompt,
		FooterText:    render.Sanitize(site.FooterText),
		DonationText:  render.Sanitize(site.DonationText),
	}

	if user, domain, ok := strings.Cut(site.ContactEmail, "@"); ok {
		v.ContactUser, v.ContactDomain = user, domain
	}

	start, err1 := utils.ParseColor(site.HeaderGradientStart)
	end, err2 := utils.ParseColor(site.HeaderGradientEnd)
	if err1 == nil && err2 == nil {
		v.HeaderStyle = template.CSS(fmt.Sprintf("--header-start: %s; --header-end: %s;",
			utils.CSSColor(start), utils.CSSColor(end)))
	}
	if site.BackgroundImage != "" {
		v.BodyStyle = template.CSS(fmt.Sprintf("background-image: url('%s');", cssURL(assetURL(site.BackgroundImage))))
	}
	return v
}

// assetURL maps a configured image path to a URL. Relative paths live
// under /static/.
func assetURL(p string) string {
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return "/static/" + p
}

var cssURLEscaper = strings.NewReplacer(`'`, "%27", `"`, "%22", `(`, "%28", `)`, "%29", `\`, "%5C", " ", "%20", "\n", "", "\r", "")

func cssURL(u string) string {
	return cssURLEscaper.Replace(u)
}

// badgeStyle colours an initials badge from the submitter's name.
func badgeStyle(name string) template.CSS {
	c1, c2 := utils.GradientFor(name)
	return template.CSS(fmt.Sprintf("background: linear-gradient(135deg, %s, %s);", utils.CSSColor(c1), utils.CSSColor(c2)))
}

func (r *renderer) bytes(name string, data view) ([]byte, error) {
	t, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	data.Site = r.site

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// html renders a page fully before writing so template errors become a 500.
func (s *Server) html(w http.ResponseWriter, status int, name string, data view) {
	body, err := s.tmpl.bytes(name, data)
	if err != nil {
		logger.LogError("%v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, body)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
