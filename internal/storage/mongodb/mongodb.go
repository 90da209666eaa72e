// Package mongodb implements storage.Storage on a MongoDB collection.
//
// Each aluno is one document:
//
//	{ "_id": ObjectId(..), "nome": "..", "email": "..", "cpf": ".." }
//
// The _id is generated on insert and exposed as its hex string.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/gabpenaforte/lista-alunos-api/internal/config"
	"github.com/gabpenaforte/lista-alunos-api/internal/storage"
	"github.com/gabpenaforte/lista-alunos-api/internal/types"
)

// Document keys.
const (
	idKey    = "_id"
	nameKey  = "nome"
	emailKey = "email"
	cpfKey   = "cpf"
)

type document struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  string             `bson:"nome"`
	Email string             `bson:"email"`
	CPF   string             `bson:"cpf"`
}

func fromStudent(s types.Student) document {
	return document{
		Name:  s.Name,
		Email: s.Email,
		CPF:   s.CPF,
	}
}

func (d document) student() types.Student {
	return types.Student{
		ID:    d.ID.Hex(),
		Name:  d.Name,
		Email: d.Email,
		CPF:   d.CPF,
	}
}

// Mongo is the MongoDB implementation of storage.Storage.
// *mongo.Client is safe for concurrent use.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ storage.Storage = (*Mongo)(nil)

// New connects to cfg.Storage.Mongo.URI and verifies the connection
// with a ping before returning.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	mcfg := cfg.Storage.Mongo

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(mcfg.URI).
		SetConnectTimeout(mcfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("mongo.New: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, mcfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo.New: ping: %w", err)
	}

	return &Mongo{
		client: client,
		coll:   client.Database(mcfg.Database).Collection(mcfg.Collection),
	}, nil
}

// objectID parses a hex id. A malformed id is a store failure, not a
// missing record.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return oid, nil
}

// CreateStudent validates and inserts a new document.
func (m *Mongo) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	if err := student.Validate(); err != nil {
		return types.Student{}, err
	}

	doc := fromStudent(student)
	doc.ID = primitive.NewObjectID()

	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: insert: %w", err)
	}

	return doc.student(), nil
}

// GetStudentByID fetches one document by _id.
func (m *Mongo) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	oid, err := objectID(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}

	var doc document
	err = m.coll.FindOne(ctx, bson.M{idKey: oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Student{}, fmt.Errorf("GetStudentByID %s: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: find: %w", err)
	}

	return doc.student(), nil
}

// GetStudents returns every document matching filter.
func (m *Mongo) GetStudents(ctx context.Context, filter types.StudentFilter) ([]types.Student, error) {
	cursor, err := m.coll.Find(ctx, buildFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("GetStudents: find: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("GetStudents: decode: %w", err)
	}

	students := make([]types.Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, doc.student())
	}

	return students, nil
}

// buildFilter translates f into a query document. Name and email become
// case-insensitive regexes over the quoted input, so user text never
// acts as a pattern.
func buildFilter(f types.StudentFilter) bson.M {
	query := bson.M{}

	if f.Name != "" {
		query[nameKey] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
	}
	if f.Email != "" {
		query[emailKey] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Email), Options: "i"}
	}
	if f.CPF != "" {
		query[cpfKey] = f.CPF
	}

	return query
}

// buildUpdate returns a $set of the non-nil fields of p.
func buildUpdate(p types.StudentPatch) bson.M {
	set := bson.M{}

	if p.Name != nil {
		set[nameKey] = *p.Name
	}
	if p.Email != nil {
		set[emailKey] = *p.Email
	}
	if p.CPF != nil {
		set[cpfKey] = *p.CPF
	}

	return bson.M{"$set": set}
}

// UpdateStudentByID applies patch and returns the document as it is
// after the update.
func (m *Mongo) UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	if err := patch.Validate(); err != nil {
		return types.Student{}, err
	}

	// An empty $set is rejected by the server.
	if patch.IsEmpty() {
		return m.GetStudentByID(ctx, id)
	}

	oid, err := objectID(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	var doc document
	err = m.coll.FindOneAndUpdate(ctx,
		bson.M{idKey: oid},
		buildUpdate(patch),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Student{}, fmt.Errorf("UpdateStudentByID %s: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("UpdateStudentByID: find and update: %w", err)
	}

	return doc.student(), nil
}

// DeleteStudentByID removes one document by _id.
func (m *Mongo) DeleteStudentByID(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}

	res, err := m.coll.DeleteOne(ctx, bson.M{idKey: oid})
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("DeleteStudentByID %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// Ping checks the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
