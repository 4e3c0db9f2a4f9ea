// Package htmltomarkdown adapts html-to-markdown to prodmeta.Converter.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/prodmeta"
)

var _ prodmeta.Converter = (*Converter)(nil)

// NoiseTags are shop widgets whose text carries no product information:
// cart and wishlist buttons, variant pickers, icon sprites and embeds.
var NoiseTags = []string{"button", "select", "svg", "iframe", "dialog"}

// Converter wraps html-to-markdown to convert product HTML to Markdown.
// Tables are kept since specification sheets are usually tabular.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	for _, tag := range NoiseTags {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}
	return &Converter{conv: conv}
}

// Convert transforms HTML into Markdown. Links and images with relative
// URLs are made absolute against baseURL when it is set.
func (c *Converter) Convert(html, baseURL string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", prodmeta.Errorf(prodmeta.EINVALID, "empty HTML input")
	}

	var md string
	var err error
	if baseURL == "" {
		md, err = c.conv.ConvertString(html)
	} else {
		md, err = c.conv.ConvertString(html, converter.WithDomain(baseURL))
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}
