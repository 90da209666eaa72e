package aluno

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gabpenaforte/lista-alunos-api/internal/storage"
	"github.com/gabpenaforte/lista-alunos-api/internal/storage/storagetest"
	"github.com/gabpenaforte/lista-alunos-api/internal/types"
)

const notFoundBody = `{"status":"falha","message":"Aluno não encontrado"}`

var teste = types.Student{
	ID:    "12345",
	Name:  "teste",
	Email: "teste@gmail.com",
	CPF:   "111.111.111-11",
}

func strPtr(s string) *string { return &s }

func serve(h http.HandlerFunc, method, target, body, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if id != "" {
		req.SetPathValue("id", id)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func errorBody(msg, cause string) string {
	return fmt.Sprintf(`{"status":"erro","message":%q,"error":%q}`, msg, cause)
}

func TestNew(t *testing.T) {
	input := types.Student{Name: "teste", Email: "teste@gmail.com", CPF: "111.111.111-11"}
	body := `{"nome":"teste","email":"teste@gmail.com","cpf":"111.111.111-11"}`

	t.Run("creates a new aluno", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("CreateStudent", mock.Anything, input).Return(teste, nil)

		rec := serve(New(store), http.MethodPost, "/alunos/create", body, "")

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"status":"sucesso","data":{"aluno":
			{"id":"12345","nome":"teste","email":"teste@gmail.com","cpf":"111.111.111-11"}}}`,
			rec.Body.String())
		store.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("CreateStudent", mock.Anything, input).
			Return(types.Student{}, errors.New("aluno validation failed: field cpf is required"))

		rec := serve(New(store), http.MethodPost, "/alunos/create", body, "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, errorBody("Erro ao criar aluno", "aluno validation failed: field cpf is required"),
			rec.Body.String())
	})

	t.Run("empty body is passed to the store", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("CreateStudent", mock.Anything, types.Student{}).
			Return(types.Student{}, errors.New("aluno validation failed: field nome is required"))

		rec := serve(New(store), http.MethodPost, "/alunos/create", "", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		store.AssertExpectations(t)
	})

	t.Run("malformed json", func(t *testing.T) {
		store := new(storagetest.Mock)

		rec := serve(New(store), http.MethodPost, "/alunos/create", `{"nome":`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"message":"Erro ao criar aluno"`)
		store.AssertNotCalled(t, "CreateStudent", mock.Anything, mock.Anything)
	})
}

func TestUpdate(t *testing.T) {
	body := `{"nome":"teste atualizado","email":"teste@gmail.com","cpf":"111.111.111-11"}`
	fullPatch := types.StudentPatch{
		Name:  strPtr("teste atualizado"),
		Email: strPtr("teste@gmail.com"),
		CPF:   strPtr("111.111.111-11"),
	}

	t.Run("updates an existing aluno", func(t *testing.T) {
		updated := teste
		updated.Name = "teste atualizado"

		store := new(storagetest.Mock)
		store.On("UpdateStudentByID", mock.Anything, "12345", fullPatch).Return(updated, nil)

		rec := serve(Update(store), http.MethodPatch, "/alunos/update/12345", body, "12345")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"sucesso","data":{"aluno":
			{"id":"12345","nome":"teste atualizado","email":"teste@gmail.com","cpf":"111.111.111-11"}}}`,
			rec.Body.String())
		store.AssertExpectations(t)
	})

	t.Run("omitted fields are not sent", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("UpdateStudentByID", mock.Anything, "12345",
			types.StudentPatch{Email: strPtr("novo@gmail.com")}).Return(teste, nil)

		rec := serve(Update(store), http.MethodPatch, "/alunos/update/12345", `{"email":"novo@gmail.com"}`, "12345")

		assert.Equal(t, http.StatusOK, rec.Code)
		store.AssertExpectations(t)
	})

	t.Run("aluno not found", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("UpdateStudentByID", mock.Anything, "12345", fullPatch).
			Return(types.Student{}, fmt.Errorf("UpdateStudentByID 12345: %w", storage.ErrNotFound))

		rec := serve(Update(store), http.MethodPatch, "/alunos/update/12345", body, "12345")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, notFoundBody, rec.Body.String())
	})

	t.Run("store error", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("UpdateStudentByID", mock.Anything, "12345", fullPatch).
			Return(types.Student{}, errors.New("Erro ao atualizar aluno"))

		rec := serve(Update(store), http.MethodPatch, "/alunos/update/12345", body, "12345")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, errorBody("Erro ao atualizar aluno", "Erro ao atualizar aluno"), rec.Body.String())
	})

	t.Run("malformed json", func(t *testing.T) {
		store := new(storagetest.Mock)

		rec := serve(Update(store), http.MethodPatch, "/alunos/update/12345", `[`, "12345")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		store.AssertNotCalled(t, "UpdateStudentByID", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDelete(t *testing.T) {
	t.Run("deletes an existing aluno", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("GetStudentByID", mock.Anything, "12345").Return(teste, nil)
		store.On("DeleteStudentByID", mock.Anything, "12345").Return(nil)

		rec := serve(Delete(store), http.MethodDelete, "/alunos/delete/12345", "", "12345")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		store.AssertExpectations(t)
	})

	t.Run("aluno not found issues no removal", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("GetStudentByID", mock.Anything, "12345").
			Return(types.Student{}, storage.ErrNotFound)

		rec := serve(Delete(store), http.MethodDelete, "/alunos/delete/12345", "", "12345")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, notFoundBody, rec.Body.String())
		store.AssertNotCalled(t, "DeleteStudentByID", mock.Anything, mock.Anything)
	})

	t.Run("lookup error", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("GetStudentByID", mock.Anything, "12345").
			Return(types.Student{}, errors.New("Erro ao deletar aluno"))

		rec := serve(Delete(store), http.MethodDelete, "/alunos/delete/12345", "", "12345")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, errorBody("Erro ao deletar aluno", "Erro ao deletar aluno"), rec.Body.String())
		store.AssertNotCalled(t, "DeleteStudentByID", mock.Anything, mock.Anything)
	})

	t.Run("removal error", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("GetStudentByID", mock.Anything, "12345").Return(teste, nil)
		store.On("DeleteStudentByID", mock.Anything, "12345").Return(errors.New("connection reset"))

		rec := serve(Delete(store), http.MethodDelete, "/alunos/delete/12345", "", "12345")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, errorBody("Erro ao deletar aluno", "connection reset"), rec.Body.String())
	})
}

func TestGetList(t *testing.T) {
	t.Run("gets all alunos", func(t *testing.T) {
		alunos := []types.Student{
			{ID: "1", Name: "Aluno 1", Email: "aluno1@teste.com", CPF: "111.111.111-11"},
			{ID: "2", Name: "Aluno 2", Email: "aluno2@teste.com", CPF: "222.222.222-22"},
		}
		store := new(storagetest.Mock)
		store.On("GetStudents", mock.Anything, types.StudentFilter{}).Return(alunos, nil)

		rec := serve(GetList(store), http.MethodGet, "/alunos/", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"sucesso","data":{"alunos":[
			{"id":"1","nome":"Aluno 1","email":"aluno1@teste.com","cpf":"111.111.111-11"},
			{"id":"2","nome":"Aluno 2","email":"aluno2@teste.com","cpf":"222.222.222-22"}]}}`,
			rec.Body.String())
	})

	t.Run("empty collection is an empty array", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("GetStudents", mock.Anything, types.StudentFilter{}).Return([]types.Student{}, nil)

		rec := serve(GetList(store), http.MethodGet, "/alunos/", "", "")

		assert.JSONEq(t, `{"status":"sucesso","data":{"alunos":[]}}`, rec.Body.String())
	})

	t.Run("store error", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("GetStudents", mock.Anything, types.StudentFilter{}).
			Return(nil, errors.New("Erro ao buscar alunos"))

		rec := serve(GetList(store), http.MethodGet, "/alunos/", "", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, errorBody("Erro ao buscar alunos", "Erro ao buscar alunos"), rec.Body.String())
	})
}

func TestGetByID(t *testing.T) {
	t.Run("gets aluno by id", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("GetStudentByID", mock.Anything, "12345").Return(teste, nil)

		rec := serve(GetByID(store), http.MethodGet, "/alunos/12345", "", "12345")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"sucesso","data":{"aluno":
			{"id":"12345","nome":"teste","email":"teste@gmail.com","cpf":"111.111.111-11"}}}`,
			rec.Body.String())
	})

	t.Run("aluno not found", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("GetStudentByID", mock.Anything, "12345").
			Return(types.Student{}, storage.ErrNotFound)

		rec := serve(GetByID(store), http.MethodGet, "/alunos/12345", "", "12345")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, notFoundBody, rec.Body.String())
	})

	t.Run("store error", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("GetStudentByID", mock.Anything, "12345").
			Return(types.Student{}, errors.New(`invalid id "12345": the provided hex string is not a valid ObjectID`))

		rec := serve(GetByID(store), http.MethodGet, "/alunos/12345", "", "12345")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, errorBody("Erro ao buscar aluno por ID",
			`invalid id "12345": the provided hex string is not a valid ObjectID`), rec.Body.String())
	})
}

func TestFilter(t *testing.T) {
	matched := []types.Student{teste}

	tests := []struct {
		name   string
		target string
		filter types.StudentFilter
	}{
		{"by nome", "/alunos/filter?nome=teste", types.StudentFilter{Name: "teste"}},
		{"by email", "/alunos/filter?email=teste@gmail.com", types.StudentFilter{Email: "teste@gmail.com"}},
		{"by cpf", "/alunos/filter?cpf=111.111.111-11", types.StudentFilter{CPF: "111.111.111-11"}},
		{"combined", "/alunos/filter?nome=te&cpf=111.111.111-11", types.StudentFilter{Name: "te", CPF: "111.111.111-11"}},
		{"no parameters", "/alunos/filter", types.StudentFilter{}},
		{"empty parameters are ignored", "/alunos/filter?nome=&email=", types.StudentFilter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(storagetest.Mock)
			store.On("GetStudents", mock.Anything, tt.filter).Return(matched, nil)

			rec := serve(Filter(store), http.MethodGet, tt.target, "", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"status":"sucesso","data":{"alunos":[
				{"id":"12345","nome":"teste","email":"teste@gmail.com","cpf":"111.111.111-11"}]}}`,
				rec.Body.String())
			store.AssertExpectations(t)
		})
	}

	t.Run("store error", func(t *testing.T) {
		store := new(storagetest.Mock)
		store.On("GetStudents", mock.Anything, types.StudentFilter{Name: "teste"}).
			Return(nil, errors.New("Erro ao filtrar alunos"))

		rec := serve(Filter(store), http.MethodGet, "/alunos/filter?nome=teste", "", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, errorBody("Erro ao filtrar alunos", "Erro ao filtrar alunos"), rec.Body.String())
	})
}
