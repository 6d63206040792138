// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证授权错误 (2xxx)
	CodeTokenExpired     ErrorCode = "2001"
	CodeTokenInvalid     ErrorCode = "2002"
	CodeTokenMissing     ErrorCode = "2003"
	CodePermissionDenied ErrorCode = "2004"

	// 资源错误 (3xxx)
	CodeStoryNotFound   ErrorCode = "3001"
	CodeChapterNotFound ErrorCode = "3002"
	CodeUserNotFound    ErrorCode = "3003"
	CodeJobNotFound     ErrorCode = "3004"
	CodeDraftNotFound   ErrorCode = "3005"

	// 业务错误 (4xxx)
	CodeDraftConflict          ErrorCode = "4001"
	CodeSlugConflict           ErrorCode = "4002"
	CodeRecommendationFailed   ErrorCode = "4003"
	CodeCoverFailed            ErrorCode = "4004"
	CodeContinuationFailed     ErrorCode = "4005"
	CodeNarrationFailed        ErrorCode = "4006"
	CodeStoryHasNoChapters     ErrorCode = "4007"
	CodeJobAlreadyFinished     ErrorCode = "4008"
	CodeEmailAlreadyRegistered ErrorCode = "4009"
	CodeNarrationDisabled      ErrorCode = "4010"

	// 外部服务错误 (5xxx)
	CodeDatabaseError    ErrorCode = "5001"
	CodeCacheError       ErrorCode = "5002"
	CodeLLMProviderError ErrorCode = "5003"
	CodeGenAIError       ErrorCode = "5004"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 返回附带详细信息的副本，预定义错误不会被修改
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 返回附带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// Is 按错误码比较，便于 errors.Is(err, ErrStoryNotFound)
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeTokenMissing:
		return http.StatusUnauthorized
	case CodeForbidden, CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound, CodeStoryNotFound, CodeChapterNotFound, CodeUserNotFound, CodeJobNotFound, CodeDraftNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeDraftConflict, CodeSlugConflict, CodeStoryHasNoChapters, CodeJobAlreadyFinished, CodeEmailAlreadyRegistered, CodeNarrationDisabled:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeRecommendationFailed, CodeCoverFailed, CodeContinuationFailed, CodeNarrationFailed, CodeLLMProviderError, CodeGenAIError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing = New(CodeTokenMissing, "token missing")

	ErrStoryNotFound   = New(CodeStoryNotFound, "story not found")
	ErrChapterNotFound = New(CodeChapterNotFound, "chapter not found")
	ErrUserNotFound    = New(CodeUserNotFound, "user not found")
	ErrJobNotFound     = New(CodeJobNotFound, "job not found")
	ErrDraftNotFound   = New(CodeDraftNotFound, "draft not found")

	ErrDraftConflict          = New(CodeDraftConflict, "draft is based on an outdated version")
	ErrSlugConflict           = New(CodeSlugConflict, "slug already taken")
	ErrStoryHasNoChapters     = New(CodeStoryHasNoChapters, "story has no chapters")
	ErrJobAlreadyFinished     = New(CodeJobAlreadyFinished, "job already finished")
	ErrEmailAlreadyRegistered = New(CodeEmailAlreadyRegistered, "email already registered")
	ErrNarrationDisabled      = New(CodeNarrationDisabled, "audio narration is disabled for this story")

	ErrRecommendationFailed = New(CodeRecommendationFailed, "failed to get recommendations")
	ErrCoverFailed          = New(CodeCoverFailed, "failed to generate cover image")
	ErrContinuationFailed   = New(CodeContinuationFailed, "failed to continue story")
	ErrNarrationFailed      = New(CodeNarrationFailed, "failed to generate audio")
)

// InvalidParam 构造参数错误
func InvalidParam(message string) *AppError {
	return New(CodeInvalidParam, message)
}
