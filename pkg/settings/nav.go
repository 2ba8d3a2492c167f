package settings

import (
	"context"
	"html"
	"io"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// RenderNav writes the section navigation list. Nothing is written when the
// tab has fewer than two sections. activeID may be a section id or its slug.
func (p *Page) RenderNav(ctx context.Context, w io.Writer, activeID string) error {
	sections := p.ListSections(ctx)
	if len(sections) < 2 {
		return nil
	}
	activeID = resolveSection(sections, activeID)

	var b strings.Builder
	b.WriteString(`<ul class="subsubsub">`)
	last := len(sections) - 1
	for i, section := range sections {
		class := ""
		if section.ID == activeID {
			class = "current"
		}
		b.WriteString(`<li><a href="`)
		b.WriteString(html.EscapeString(p.sectionURL(section.ID)))
		b.WriteString(`" class="`)
		b.WriteString(class)
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(section.Label))
		b.WriteString(`</a> `)
		if i != last {
			b.WriteString(`|`)
		}
		b.WriteString(` </li>`)
	}
	b.WriteString(`</ul><br class="clear" />`)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return wrapOperation(err, "write section navigation", ErrorCodeRender, map[string]any{"tab": p.def.ID})
	}
	return nil
}

// SectionURL returns the admin link for a section of this tab.
func (p *Page) SectionURL(sectionID string) string {
	return p.sectionURL(sectionID)
}

func (p *Page) sectionURL(sectionID string) string {
	query := "page=wc-settings&tab=" + url.QueryEscape(p.def.ID) + "&section=" + url.QueryEscape(SanitizeTitle(sectionID))
	return p.adminURL + "/admin.php?" + query
}

// SanitizeTitle turns a section id into a URL slug: accents folded, lower
// case, whitespace and dots collapsed to dashes, and anything outside
// [a-z0-9_-] dropped.
func SanitizeTitle(value string) string {
	decomposed := norm.NFKD.String(strings.TrimSpace(value))

	var b strings.Builder
	b.Grow(len(decomposed))
	dash := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			dash = false
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case r == '-', r == '.', unicode.IsSpace(r):
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
