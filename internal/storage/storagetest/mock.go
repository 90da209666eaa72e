// Package storagetest provides a testify mock of storage.Storage for
// handler and router tests.
package storagetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gabpenaforte/lista-alunos-api/internal/storage"
	"github.com/gabpenaforte/lista-alunos-api/internal/types"
)

// Mock implements storage.Storage. Program it with On(...).Return(...):
//
//	store.On("GetStudentByID", mock.Anything, "12345").
//		Return(types.Student{}, storage.ErrNotFound)
type Mock struct {
	mock.Mock
}

var _ storage.Storage = (*Mock)(nil)

func (m *Mock) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	args := m.Called(ctx, student)
	return args.Get(0).(types.Student), args.Error(1)
}

func (m *Mock) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Student), args.Error(1)
}

func (m *Mock) GetStudents(ctx context.Context, filter types.StudentFilter) ([]types.Student, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Student), args.Error(1)
}

func (m *Mock) UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(types.Student), args.Error(1)
}

func (m *Mock) DeleteStudentByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Mock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Mock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
