// Package aluno contains the HTTP handlers for the aluno resource.
//
// Every handler is built by a factory that closes over the store:
//
//	router.HandleFunc("POST /alunos/create", aluno.New(store))
//
// aluno.New(store) runs once at startup; the function it returns runs
// on every request. Each handler issues exactly one store call (delete
// issues a lookup first) and answers with the envelope from the
// response package.
package aluno

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gabpenaforte/lista-alunos-api/internal/storage"
	"github.com/gabpenaforte/lista-alunos-api/internal/types"
	"github.com/gabpenaforte/lista-alunos-api/internal/utils/response"
)

// Envelope messages.
const (
	MsgNotFound = "Aluno não encontrado"
	MsgDeleted  = "Aluno deletado com sucesso"

	MsgCreateError  = "Erro ao criar aluno"
	MsgUpdateError  = "Erro ao atualizar aluno"
	MsgDeleteError  = "Erro ao deletar aluno"
	MsgListError    = "Erro ao buscar alunos"
	MsgGetByIDError = "Erro ao buscar aluno por ID"
	MsgFilterError  = "Erro ao filtrar alunos"
)

// decodeBody decodes the JSON request body into v. An empty body leaves
// v at its zero value, so the store schema decides what is missing.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeStoreError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	slog.Error(msg, append(attrs, slog.String("error", err.Error()))...)
	response.WriteJSON(w, http.StatusInternalServerError, response.Error(msg, err))
}

func writeNotFound(w http.ResponseWriter, id string) {
	slog.Info("aluno not found", slog.String("id", id))
	response.WriteJSON(w, http.StatusNotFound, response.Fail(MsgNotFound))
}

// New handles POST {base}/create.
//
//	{ "nome": "teste", "email": "teste@gmail.com", "cpf": "111.111.111-11" }
//
// 201 with the created record, 400 on malformed JSON, 500 on any store
// error (schema violations included).
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating an aluno")

		var student types.Student
		if err := decodeBody(r, &student); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.Error(MsgCreateError, err))
			return
		}

		created, err := store.CreateStudent(r.Context(), student)
		if err != nil {
			writeStoreError(w, MsgCreateError, err)
			return
		}

		slog.Info("aluno created", slog.String("id", created.ID))
		response.WriteJSON(w, http.StatusCreated,
			response.Success(map[string]any{"aluno": created}))
	}
}

// Update handles PATCH {base}/update/{id}.
//
// Only the fields present in the body are written; omitted fields keep
// their stored value. 200 with the updated record, 404 if the id is
// unknown.
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating an aluno", slog.String("id", id))

		var patch types.StudentPatch
		if err := decodeBody(r, &patch); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.Error(MsgUpdateError, err))
			return
		}

		updated, err := store.UpdateStudentByID(r.Context(), id, patch)
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(w, id)
			return
		}
		if err != nil {
			writeStoreError(w, MsgUpdateError, err, slog.String("id", id))
			return
		}

		slog.Info("aluno updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			response.Success(map[string]any{"aluno": updated}))
	}
}

// Delete handles DELETE {base}/delete/{id}.
//
// The record is looked up first; an unknown id answers 404 without a
// removal call. Success is 204 with no body.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting an aluno", slog.String("id", id))

		if _, err := store.GetStudentByID(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeNotFound(w, id)
				return
			}
			writeStoreError(w, MsgDeleteError, err, slog.String("id", id))
			return
		}

		// The record may vanish between the lookup and the delete; that
		// surfaces as a store error like any other.
		if err := store.DeleteStudentByID(r.Context(), id); err != nil {
			writeStoreError(w, MsgDeleteError, err, slog.String("id", id))
			return
		}

		slog.Info(MsgDeleted, slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetList handles GET {base}/ and returns every record, unfiltered.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all alunos")

		students, err := store.GetStudents(r.Context(), types.StudentFilter{})
		if err != nil {
			writeStoreError(w, MsgListError, err)
			return
		}

		response.WriteJSON(w, http.StatusOK,
			response.Success(map[string]any{"alunos": students}))
	}
}

// GetByID handles GET {base}/{id}.
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting an aluno", slog.String("id", id))

		student, err := store.GetStudentByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(w, id)
			return
		}
		if err != nil {
			writeStoreError(w, MsgGetByIDError, err, slog.String("id", id))
			return
		}

		response.WriteJSON(w, http.StatusOK,
			response.Success(map[string]any{"aluno": student}))
	}
}

// Filter handles GET {base}/filter?nome=&email=&cpf=.
//
// nome and email match as case-insensitive substrings, cpf exactly.
// Absent or empty parameters add no constraint.
func Filter(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := types.StudentFilter{
			Name:  q.Get("nome"),
			Email: q.Get("email"),
			CPF:   q.Get("cpf"),
		}

		slog.Info("filtering alunos",
			slog.String("nome", filter.Name),
			slog.String("email", filter.Email),
			slog.String("cpf", filter.CPF),
		)

		students, err := store.GetStudents(r.Context(), filter)
		if err != nil {
			writeStoreError(w, MsgFilterError, err)
			return
		}

		response.WriteJSON(w, http.StatusOK,
			response.Success(map[string]any{"alunos": students}))
	}
}
