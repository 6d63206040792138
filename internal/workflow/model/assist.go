// Package model 定义工作流的输入输出结构
package model

// RecommendationInput 阅读推荐输入
type RecommendationInput struct {
	Provider string
	Model    string
	Genres   []string
	MaxItems int

	Temperature *float32
}

// RecommendationOutput 阅读推荐输出
type RecommendationOutput struct {
	Titles []string
	Raw    string
}

// ContinuationInput 续写输入，ExistingText 为已截断的纯文本
type ContinuationInput struct {
	Provider     string
	Model        string
	ExistingText string

	Temperature *float32
	MaxTokens   *int
}

// ContinuationOutput 续写输出
type ContinuationOutput struct {
	Text string
}
