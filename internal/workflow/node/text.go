// Package node 提供工作流节点共用的文本处理函数
package node

import (
	"strings"
	"unicode/utf8"
)

// TruncateByRunes 保留前 maxRunes 个字符
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// TailByRunes 保留最后 maxRunes 个字符
func TailByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	total := utf8.RuneCountInString(s)
	if total <= maxRunes {
		return s
	}
	skip := total - maxRunes
	n := 0
	for i := range s {
		if n == skip {
			return s[i:]
		}
		n++
	}
	return ""
}

// StripEcho 去掉模型输出开头复述的原文
func StripEcho(existing, output string) string {
	out := strings.TrimSpace(output)
	ctx := strings.TrimSpace(existing)
	if ctx != "" && strings.HasPrefix(out, ctx) {
		out = strings.TrimSpace(strings.TrimPrefix(out, ctx))
	}
	return out
}

// BulletBlock 将条目渲染为 "- item" 列表
func BulletBlock(items []string) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			lines = append(lines, "- "+it)
		}
	}
	return strings.Join(lines, "\n")
}
