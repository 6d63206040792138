package node

import (
	"regexp"
	"strings"
)

var (
	// 1. / 1) / - / * / • 等列表前缀
	listMarker = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s+`)
	emphasis   = strings.NewReplacer("**", "", "__", "", "`", "")
)

const quoteChars = `"'“”‘’`

// ParseTitleList 解析模型返回的书名列表
// 输出中存在列表项时只保留列表项；去掉编号、强调和引号，忽略空行，按不区分大小写去重，最多 max 项
func ParseTitleList(text string, max int) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	hasMarkers := false
	for _, line := range lines {
		if listMarker.MatchString(strings.TrimSpace(line)) {
			hasMarkers = true
			break
		}
	}

	seen := make(map[string]struct{})
	titles := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if hasMarkers && !listMarker.MatchString(line) {
			continue
		}
		title := cleanTitle(listMarker.ReplaceAllString(line, ""))
		if title == "" {
			continue
		}
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		titles = append(titles, title)
		if max > 0 && len(titles) == max {
			break
		}
	}
	return titles
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(emphasis.Replace(s))
	s = strings.Trim(s, "*_ ")
	s = strings.Trim(s, quoteChars)
	return strings.TrimSpace(s)
}
