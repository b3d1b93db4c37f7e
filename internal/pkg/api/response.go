package api

import (
	"encoding/json"
	"log"
	"net/http"

	rjapi "github.com/RoyceAzure/rj/api"
)

// Response 統一回應格式，與 rj/api 相同
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// SuccessJSON 200，headers 可為 nil
func SuccessJSON(w http.ResponseWriter, data any, headers map[string]string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	rjapi.SuccessJSON(w, data, nil)
}

func CreatedJSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Response{Code: http.StatusCreated, Message: "created", Data: data})
}

// StatusJSON 非 2xx 但仍需附帶資料時使用
func StatusJSON(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Code: status, Message: message, Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ErrorJSON 5xx 不回傳錯誤細節
func ErrorJSON(w http.ResponseWriter, status int, err error, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	if status >= http.StatusInternalServerError {
		err = nil
	}
	rjapi.ErrorJSON(w, status, err, message)
}
