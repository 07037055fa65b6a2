package response

import (
	"encoding/json"
	"net/http"
)

// Response 所有 API 回應的外層
type Response struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func SuccessJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

func ErrorJSON(w http.ResponseWriter, status int, body ErrorBody) {
	if body.Code == "" {
		body.Code = http.StatusText(status)
	}
	writeJSON(w, status, Response{Error: &body})
}

func writeJSON(w http.ResponseWriter, status int, res Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}
