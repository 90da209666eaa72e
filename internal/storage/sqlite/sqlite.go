// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk: no network, no
// separate server process. It is the default backend for local runs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gabpenaforte/lista-alunos-api/internal/config"
	"github.com/gabpenaforte/lista-alunos-api/internal/storage"
	"github.com/gabpenaforte/lista-alunos-api/internal/types"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// driverName is the go-sqlite3 driver with a Unicode-aware fold(text)
// function on every connection. The built-in lower() only folds ASCII.
const driverName = "sqlite3_alunos"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is a connection pool, safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.Storage.Path, creates the alunos
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open(driverName, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// id is a UUID generated by the application, not an autoincrement
	// integer, so ids look alike across backends.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS alunos (
			id    TEXT PRIMARY KEY,
			nome  TEXT NOT NULL,
			email TEXT NOT NULL,
			cpf   TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreateStudent validates student against the schema and inserts it with
// a fresh id. Any id set by the caller is ignored.
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	if err := student.Validate(); err != nil {
		return types.Student{}, err
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO alunos (id, nome, email, cpf) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	student.ID = uuid.NewString()

	if _, err := stmt.ExecContext(ctx, student.ID, student.Name, student.Email, student.CPF); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	return student, nil
}

// GetStudentByID fetches exactly one row matched by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, nome, email, cpf FROM alunos WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	var student types.Student

	err = stmt.QueryRowContext(ctx, id).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.CPF,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("GetStudentByID %s: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// GetStudents returns all rows matching filter, in insertion order.
//
// Name and email use instr(fold(..), fold(?)) rather than LIKE, so the
// input is always a literal substring: '%' and '_' carry no meaning.
// fold folds case the same way types.StudentFilter.Matches does.
func (s *SQLite) GetStudents(ctx context.Context, filter types.StudentFilter) ([]types.Student, error) {
	query, args := buildSelect(filter)

	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the JSON response carries [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student

		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.CPF,
		); err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}

		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

func buildSelect(filter types.StudentFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	if filter.Name != "" {
		where = append(where, "instr(fold(nome), fold(?)) > 0")
		args = append(args, filter.Name)
	}
	if filter.Email != "" {
		where = append(where, "instr(fold(email), fold(?)) > 0")
		args = append(args, filter.Email)
	}
	if filter.CPF != "" {
		where = append(where, "cpf = ?")
		args = append(args, filter.CPF)
	}

	query := "SELECT id, nome, email, cpf FROM alunos"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid"

	return query, args
}

// UpdateStudentByID writes the non-nil fields of patch and returns the
// row as stored afterwards. COALESCE keeps the current value of every
// column whose argument is NULL.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	if err := patch.Validate(); err != nil {
		return types.Student{}, err
	}

	if patch.IsEmpty() {
		return s.GetStudentByID(ctx, id)
	}

	stmt, err := s.Db.PrepareContext(ctx, `
		UPDATE alunos
		SET nome  = COALESCE(?, nome),
		    email = COALESCE(?, email),
		    cpf   = COALESCE(?, cpf)
		WHERE id = ?
	`)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		nullString(patch.Name),
		nullString(patch.Email),
		nullString(patch.CPF),
		id,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	if err := checkAffected(result, "UpdateStudentByID", id); err != nil {
		return types.Student{}, err
	}

	return s.GetStudentByID(ctx, id)
}

// DeleteStudentByID removes a row by primary key.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM alunos WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	return checkAffected(result, "DeleteStudentByID", id)
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func checkAffected(result sql.Result, op, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, storage.ErrNotFound)
	}
	return nil
}

// Ping verifies the database file is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *SQLite) Close(_ context.Context) error {
	return s.Db.Close()
}
