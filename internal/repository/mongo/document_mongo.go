package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docshare/internal/model"
	"docshare/internal/repository"
)

// DocumentMongo is a MongoDB implementation of repository.DocumentRepository.
// Records are keyed by an application-assigned "id" string field. Grantee
// mutations use $addToSet/$pull, which give the array true set semantics on
// the backend.
type DocumentMongo struct {
	col *mongo.Collection
}

// NewDocumentMongo creates the repository and ensures a unique index on "id".
func NewDocumentMongo(col *mongo.Collection) *DocumentMongo {
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &DocumentMongo{col: col}
}

var _ repository.DocumentRepository = (*DocumentMongo)(nil)

// Create inserts a new document and returns the stored record.
func (r *DocumentMongo) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	stored := *doc
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
	}
	if stored.SharedWith == nil {
		stored.SharedWith = []string{}
	}
	if _, err := r.col.InsertOne(ctx, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// FindByID returns a record by its ID, or repository.ErrNotFound.
func (r *DocumentMongo) FindByID(ctx context.Context, id string) (*model.Document, error) {
	var d model.Document
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListAll returns the complete record set in stable upload order.
func (r *DocumentMongo) ListAll(ctx context.Context) ([]model.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}, {Key: "id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]model.Document, 0)
	for cur.Next(ctx) {
		var d model.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a record by ID. Missing records are not an error.
func (r *DocumentMongo) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	return err
}

// AddGrantee adds granteeID to the sharedWith set.
func (r *DocumentMongo) AddGrantee(ctx context.Context, id, granteeID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$addToSet": bson.M{"sharedWith": granteeID}},
	)
	return err
}

// RemoveGrantee removes granteeID from the sharedWith set.
func (r *DocumentMongo) RemoveGrantee(ctx context.Context, id, granteeID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$pull": bson.M{"sharedWith": granteeID}},
	)
	return err
}
