// Package handler はcustomapiフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"fmt"
	"net/http"

	"dashboard_backend/internal/feature/customapi/transport/http/dto"
	"dashboard_backend/internal/feature/customapi/usecase"
	"dashboard_backend/internal/platform/http/httperr"

	"github.com/gin-gonic/gin"
)

// QueryUsecase はカスタムウィジェットのクエリを実行するユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QueryUsecase interface {
	Run(ctx context.Context, q usecase.Query) (*usecase.QueryResult, error)
}

// CustomHandler は任意のJSON APIに対するクエリを処理します。
type CustomHandler struct {
	uc QueryUsecase
}

// NewCustomHandler はCustomHandlerを生成します。
func NewCustomHandler(uc QueryUsecase) *CustomHandler {
	return &CustomHandler{uc: uc}
}

// Query はURLからJSONを取得し、選択されたフィールドを返します。
//
// エンドポイント例:
// POST /custom/query {"url":"https://...","fields":["data.0.value"]}
func (h *CustomHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err.Error())
		return
	}
	for field, spec := range req.Formatting {
		if err := spec.Validate(); err != nil {
			httperr.BadRequest(c, fmt.Sprintf("formatting %q: %v", field, err))
			return
		}
	}

	res, err := h.uc.Run(c.Request.Context(), usecase.Query{
		URL:         req.URL,
		Headers:     req.Headers,
		Variables:   req.Variables,
		Fields:      req.Fields,
		Formatting:  req.Formatting,
		DisplayMode: usecase.DisplayMode(req.DisplayMode),
	})
	if err != nil {
		httperr.Write(c, err)
		return
	}

	out := dto.QueryResponse{
		Data:            res.Data,
		AvailableFields: res.Available,
		Values:          make([]dto.FieldValue, 0, len(res.Values)),
		Series:          res.Series,
		Preview:         res.Preview,
	}
	if out.AvailableFields == nil {
		out.AvailableFields = []string{}
	}
	for _, v := range res.Values {
		out.Values = append(out.Values, dto.FieldValue{
			Path:    v.Path,
			Value:   v.Value,
			Found:   v.Found,
			Display: v.Display,
		})
	}
	c.JSON(http.StatusOK, out)
}
