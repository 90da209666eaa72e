// Package response provides helpers for writing the JSON envelope every
// endpoint answers with.
//
// Three shapes exist:
//
//	success   { "status": "sucesso", "data": { ... } }
//	not found { "status": "falha",   "message": "Aluno não encontrado" }
//	error     { "status": "erro",    "message": "Erro ao criar aluno", "error": "<cause>" }
package response

import (
	"encoding/json"
	"net/http"
)

// Status values carried in the envelope's "status" field.
const (
	StatusSuccess = "sucesso"
	StatusFail    = "falha"
	StatusError   = "erro"
)

// Response is the envelope. Unused fields are omitted so each shape
// carries exactly its own keys.
type Response struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes data as JSON with the given HTTP status code.
//
// Header() → WriteHeader() → body, in that order: once WriteHeader is
// called the headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Success wraps data in a "sucesso" envelope.
//
//	response.WriteJSON(w, http.StatusOK, response.Success(map[string]any{"aluno": s}))
func Success(data any) Response {
	return Response{
		Status: StatusSuccess,
		Data:   data,
	}
}

// Fail builds a "falha" envelope: an expected, client-side outcome such
// as a missing record.
func Fail(message string) Response {
	return Response{
		Status:  StatusFail,
		Message: message,
	}
}

// Error builds an "erro" envelope. message is fixed per operation; err's
// text is passed through verbatim.
func Error(message string, err error) Response {
	return Response{
		Status:  StatusError,
		Message: message,
		Error:   err.Error(),
	}
}
