// Package markup renders post text to sanitized HTML.
package markup

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify, quoteExtension{}),
		// single newlines are line breaks in posts
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.AllowAttrs("class").Matching(regexp.MustCompile("^"+quoteClass+"$")).OnElements("span")

	return &Renderer{md: md, policy: policy}
}

// Render converts markdown text to HTML safe to embed in a page.
// Raw HTML in the input never survives.
func (r *Renderer) Render(text string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		logger.Log.Warn("markdown conversion failed, falling back to escaped text", "error", err)
		return r.policy.Sanitize(escape(text))
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String()))
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")

func escape(s string) string {
	return escaper.Replace(s)
}
