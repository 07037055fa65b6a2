package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/rs/zerolog"
)

// SessionUser 取得 RequireAdmin 放進 context 的使用者
func SessionUser(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(constants.SessionUserKey).(model.User)
	return user, ok
}

/*
RequireAdmin session 使用者必須是 admin
錯誤:
  - 401: 沒有登入
  - 403: 不是 admin
*/
func RequireAdmin(users service.IUserService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := users.Current(r.Context())
			if err != nil {
				if errors.Is(err, service.ErrNoSession) {
					response.ErrorJSON(w, http.StatusUnauthorized, response.ErrorBody{Message: err.Error()})
					return
				}
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("load session user")
				response.ErrorJSON(w, http.StatusInternalServerError, response.ErrorBody{Message: "Internal Server Error"})
				return
			}
			if !user.IsAdmin() {
				response.ErrorJSON(w, http.StatusForbidden, response.ErrorBody{Message: "admin role required"})
				return
			}
			ctx := context.WithValue(r.Context(), constants.SessionUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
