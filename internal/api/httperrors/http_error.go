package httperrors

import (
	"fmt"

	"github.com/kashguard/go-sign-bridge/internal/types"
)

// HTTPError 内部错误载体，最终以 types.PublicHTTPError 形式返回给客户端
type HTTPError struct {
	types.PublicHTTPError
	Internal error `json:"-"`
}

// NewHTTPError 创建一个 HTTP 错误
func NewHTTPError(status int, errorType, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Status: status,
			Type:   errorType,
			Title:  title,
		},
	}
}

// NewHTTPErrorWithInternal 创建一个携带内部原因的 HTTP 错误（内部原因不会下发）
func NewHTTPErrorWithInternal(status int, errorType, title string, internal error) *HTTPError {
	e := NewHTTPError(status, errorType, title)
	e.Internal = internal
	return e
}

func (e *HTTPError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("HTTPError %d (%s): %s: %v", e.Status, e.Type, e.Title, e.Internal)
	}
	return fmt.Sprintf("HTTPError %d (%s): %s", e.Status, e.Type, e.Title)
}
