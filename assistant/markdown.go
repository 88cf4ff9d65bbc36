package assistant

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	mdExtensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	mdHTMLFlags  = html.CommonFlags | html.HrefTargetBlank
	replyPolicy  = bluemonday.UGCPolicy()
)

// renderReplyHTML converte a resposta do modelo (markdown, listas com "*") em HTML seguro
// para o widget. O texto puro continua indo em "reply".
func renderReplyHTML(text string) string {
	if text == "" {
		return ""
	}
	p := parser.NewWithExtensions(mdExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: mdHTMLFlags})
	unsafe := markdown.Render(p.Parse([]byte(text)), renderer)
	return string(replyPolicy.SanitizeBytes(unsafe))
}
