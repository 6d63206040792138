// Package richtext 处理章节富文本：清洗编辑器提交的 HTML，并提取纯文本
package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// EmptyChapterHTML 新章节的初始内容
const EmptyChapterHTML = "<p></p>"

// blockSelector 输出纯文本时按段落断行的块级元素
const blockSelector = "p, div, h1, h2, h3, h4, h5, h6, li, blockquote, pre"

// Sanitizer 基于 bluemonday 的 HTML 清洗器
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer 创建清洗器，允许编辑器常用的排版标签
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowStyles("text-align").MatchingEnum("left", "center", "right", "justify").OnElements("p")
	return &Sanitizer{policy: p}
}

// Sanitize 清洗 HTML，空内容回退为空段落
func (s *Sanitizer) Sanitize(html string) string {
	out := strings.TrimSpace(s.policy.Sanitize(html))
	if out == "" {
		return EmptyChapterHTML
	}
	return out
}

// PlainText 提取纯文本，段落之间以空行分隔
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).AppendHtml("\n")

	lines := strings.Split(doc.Text(), "\n")
	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// WordCount 统计 HTML 内容的词数
func WordCount(html string) int {
	return len(strings.Fields(PlainText(html)))
}
