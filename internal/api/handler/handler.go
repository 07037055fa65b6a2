package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/rs/zerolog"
)

/*
writeError 把 service 錯誤轉成 http status
  - ValidationError: 400
  - ErrNotFound: 404
  - ErrInvalidTransition, ErrEmailTaken: 409
  - ErrInvalidCredentials, ErrNoSession: 401
  - 其他: 500, 只有這種會記錄 error log
*/
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorJSON(w, http.StatusBadRequest, response.ErrorBody{
			Code:    "validation_failed",
			Message: verr.Error(),
			Field:   verr.Field,
		})
	case errors.Is(err, repository.ErrNotFound):
		response.ErrorJSON(w, http.StatusNotFound, response.ErrorBody{Code: "not_found", Message: err.Error()})
	case errors.Is(err, model.ErrInvalidTransition):
		response.ErrorJSON(w, http.StatusConflict, response.ErrorBody{Code: "invalid_transition", Message: err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		response.ErrorJSON(w, http.StatusConflict, response.ErrorBody{Code: "email_taken", Message: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		response.ErrorJSON(w, http.StatusUnauthorized, response.ErrorBody{Code: "invalid_credentials", Message: err.Error()})
	case errors.Is(err, service.ErrNoSession):
		response.ErrorJSON(w, http.StatusUnauthorized, response.ErrorBody{Code: "no_session", Message: err.Error()})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Msg("request failed")
		response.ErrorJSON(w, http.StatusInternalServerError, response.ErrorBody{
			Code:    "internal",
			Message: "Internal Server Error",
		})
	}
}

// decodeBody body 格式錯誤時直接回 400
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.ErrorJSON(w, http.StatusBadRequest, response.ErrorBody{
			Code:    "bad_request",
			Message: "invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}

// deleted 刪除不存在的資料不是錯誤, 回傳有沒有刪到
type deleted struct {
	Deleted bool `json:"deleted"`
}
