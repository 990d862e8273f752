// Package httperr はフェッチエラーをHTTPレスポンスへ変換します。
package httperr

import (
	"net/http"

	"dashboard_backend/internal/shared/fetcherr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse はエラー時のレスポンスボディです。
type ErrorResponse struct {
	Error string        `json:"error"`
	Kind  fetcherr.Kind `json:"kind,omitempty"`
}

// Write はエラーの種類に応じたステータスでErrorResponseを返します。
func Write(c *gin.Context, err error) {
	c.JSON(fetcherr.HTTPStatus(err), ErrorResponse{
		Error: err.Error(),
		Kind:  fetcherr.KindOf(err),
	})
}

// BadRequest は入力不正を400で返します。
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
