package handler

import (
	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/application/catalog"
	"bookhatch-api/internal/application/story"
	"bookhatch-api/internal/interfaces/http/dto"
)

// CatalogHandler 书目处理器
type CatalogHandler struct {
	catalog *catalog.Service
	stories *story.Service
}

// NewCatalogHandler 创建书目处理器
func NewCatalogHandler(catalogSvc *catalog.Service, stories *story.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalogSvc, stories: stories}
}

// Search 检索书目
// @Summary 检索书目
// @Tags Catalog
// @Produce json
// @Param q query string false "关键词"
// @Param genres query string false "逗号分隔的题材"
// @Param status query string false "all/published/ongoing"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.BookResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/search [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	q := dto.BindSearch(c)
	status, err := catalog.ParseStatusFilter(q.Status)
	if err != nil {
		dto.HandleError(c, err, "invalid status")
		return
	}
	page := dto.BindPage(c)

	result, err := h.catalog.Search(c.Request.Context(), catalog.Criteria{
		Query:    q.Query,
		Genres:   q.Genres,
		Status:   status,
		Page:     page.Page,
		PageSize: page.PageSize,
	})
	if err != nil {
		dto.HandleError(c, err, "search failed")
		return
	}
	dto.SuccessWithPage(c, dto.ToBookList(result.Items), dto.PageMetaOf(result))
}

// Genres 题材列表
// @Summary 题材列表
// @Tags Catalog
// @Produce json
// @Success 200 {object} dto.Response[[]string]
// @Router /v1/genres [get]
func (h *CatalogHandler) Genres(c *gin.Context) {
	dto.Success(c, h.catalog.Genres())
}

// GetBook 书籍详情及已发布章节
// @Summary 书籍详情
// @Tags Catalog
// @Produce json
// @Param slug path string true "书籍 slug"
// @Success 200 {object} dto.Response[dto.StoryResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{slug} [get]
func (h *CatalogHandler) GetBook(c *gin.Context) {
	view, err := h.stories.ReadStory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		dto.HandleError(c, err, "failed to get book")
		return
	}
	dto.Success(c, dto.ToStoryView(view))
}

// GetAuthor 作者页
// @Summary 作者页
// @Tags Catalog
// @Produce json
// @Param name path string true "作者名"
// @Success 200 {object} dto.Response[dto.AuthorResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/authors/{name} [get]
func (h *CatalogHandler) GetAuthor(c *gin.Context) {
	name := c.Param("name")
	books, err := h.catalog.BooksByAuthor(c.Request.Context(), name)
	if err != nil {
		dto.HandleError(c, err, "failed to get author")
		return
	}
	dto.Success(c, &dto.AuthorResponse{Name: name, Books: dto.ToBookList(books)})
}

// Seed 导入内置书目（管理员）
// @Summary 导入内置书目
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.Response[map[string]int]
// @Router /v1/admin/catalog/seed [post]
func (h *CatalogHandler) Seed(c *gin.Context) {
	n, err := h.catalog.Seed(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err, "seed failed")
		return
	}
	dto.Success(c, gin.H{"inserted": n})
}
