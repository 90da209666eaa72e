// Package router wires the aluno handlers onto a ServeMux.
//
// Route table (base path "/alunos" by default):
//
//	POST   {base}/create       → create an aluno
//	PATCH  {base}/update/{id}  → update an aluno
//	DELETE {base}/delete/{id}  → delete an aluno
//	GET    {base}/filter       → filter by nome, email, cpf
//	GET    {base}/             → list all alunos
//	GET    {base}/{id}         → get one aluno
//	GET    /healthz            → store ping
//
// "{base}/filter" is more specific than "{base}/{id}", so the ServeMux
// sends /filter to Filter regardless of registration order.
package router

import (
	"net/http"

	"github.com/gabpenaforte/lista-alunos-api/internal/http/handlers/aluno"
	"github.com/gabpenaforte/lista-alunos-api/internal/http/handlers/health"
	"github.com/gabpenaforte/lista-alunos-api/internal/storage"
)

// New returns a ServeMux with every route registered under basePath.
func New(store storage.Storage, basePath string) *http.ServeMux {
	base := basePath
	if base == "/" {
		base = ""
	}

	router := http.NewServeMux()

	router.HandleFunc("POST "+base+"/create", aluno.New(store))
	router.HandleFunc("PATCH "+base+"/update/{id}", aluno.Update(store))
	router.HandleFunc("DELETE "+base+"/delete/{id}", aluno.Delete(store))
	router.HandleFunc("GET "+base+"/filter", aluno.Filter(store))
	router.HandleFunc("GET "+base+"/{$}", aluno.GetList(store))
	if base != "" {
		router.HandleFunc("GET "+base, aluno.GetList(store))
	}
	router.HandleFunc("GET "+base+"/{id}", aluno.GetByID(store))

	router.HandleFunc("GET /healthz", health.Handler(store))

	return router
}
