package dto

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SearchQuery 书目检索参数
type SearchQuery struct {
	Query  string
	Genres []string
	Status string
}

// BindSearch 绑定检索参数，genres 同时支持逗号分隔和重复参数
func BindSearch(c *gin.Context) SearchQuery {
	var genres []string
	for _, raw := range c.QueryArray("genres") {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genres = append(genres, g)
			}
		}
	}
	return SearchQuery{
		Query:  c.Query("q"),
		Genres: genres,
		Status: c.Query("status"),
	}
}

// AuthorResponse 作者页
type AuthorResponse struct {
	Name  string          `json:"name"`
	Books []*BookResponse `json:"books"`
}
