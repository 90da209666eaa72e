// Package storage defines the Storage interface: the contract any
// database backend must satisfy to serve the aluno handlers.
//
// Handlers only depend on this interface. Switching databases means
// implementing it for the new backend and picking it in main.go; tests
// pass a fake that satisfies it.
package storage

import (
	"context"
	"errors"

	"github.com/gabpenaforte/lista-alunos-api/internal/types"
)

// ErrNotFound is returned (possibly wrapped) when no record matches the
// requested id. Handlers map it to 404; every other error is a 500.
var ErrNotFound = errors.New("aluno not found")

// Storage is the database contract.
type Storage interface {
	// CreateStudent validates and inserts a new record. The store assigns
	// the id; the returned Student is the record as stored.
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)

	// GetStudentByID fetches a single record, or ErrNotFound.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// GetStudents returns every record matching filter. The zero filter
	// returns all records. Never returns a nil slice on success.
	GetStudents(ctx context.Context, filter types.StudentFilter) ([]types.Student, error)

	// UpdateStudentByID applies the non-nil fields of patch and returns
	// the post-update record, or ErrNotFound.
	UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error)

	// DeleteStudentByID removes a record permanently, or ErrNotFound.
	DeleteStudentByID(ctx context.Context, id string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's connections.
	Close(ctx context.Context) error
}
