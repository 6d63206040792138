package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookhatch-api/internal/application/account"
	"bookhatch-api/internal/interfaces/http/dto"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/v1/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	accounts     *account.Service
	secureCookie bool
}

// NewAuthHandler 创建认证处理器，secureCookie 在生产环境开启
func NewAuthHandler(accounts *account.Service, secureCookie bool) *AuthHandler {
	return &AuthHandler{accounts: accounts, secureCookie: secureCookie}
}

// Register 注册
// @Summary 用户注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.Response[dto.AuthResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	session, err := h.accounts.Register(c.Request.Context(), account.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		dto.HandleError(c, err, "registration failed")
		return
	}

	h.setRefreshCookie(c, session.Tokens.RefreshToken)
	dto.Created(c, h.authResponse(session))
}

// Login 登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	session, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		dto.HandleError(c, err, "login failed")
		return
	}

	h.setRefreshCookie(c, session.Tokens.RefreshToken)
	dto.Success(c, h.authResponse(session))
}

// Refresh 使用刷新令牌换发新令牌
// @Summary 刷新令牌
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		var req dto.RefreshRequest
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}

	session, err := h.accounts.Refresh(c.Request.Context(), token)
	if err != nil {
		dto.HandleError(c, err, "refresh failed")
		return
	}

	h.setRefreshCookie(c, session.Tokens.RefreshToken)
	dto.Success(c, h.authResponse(session))
}

// Logout 登出，令牌无状态，仅清除 Cookie
// @Summary 登出
// @Tags Auth
// @Success 204
// @Router /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearRefreshCookie(c)
	dto.NoContent(c)
}

func (h *AuthHandler) authResponse(s *account.Session) *dto.AuthResponse {
	return &dto.AuthResponse{
		AccessToken: s.Tokens.AccessToken,
		ExpiresIn:   int(h.accounts.AccessTTL() / time.Second),
		User:        dto.ToAuthUserDTO(s.User),
	}
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, token, int(h.accounts.RefreshTTL()/time.Second), refreshCookiePath, "", h.secureCookie, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.secureCookie, true)
}
