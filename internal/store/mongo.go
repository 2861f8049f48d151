package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/certify-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	certificatesCollection = "certificates"
	usersCollection        = "users"
	systemCollection       = "system"
)

// MongoStore keeps certificates and users in two MongoDB collections.
// A nil database makes every operation fail with ErrUnavailable, which is how
// the server runs when the initial connection could not be set up.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) collection(name string) (*mongo.Collection, error) {
	if s == nil || s.db == nil {
		return nil, ErrUnavailable
	}
	return s.db.Collection(name), nil
}

// mongoErr maps driver errors onto the store's sentinel errors.
func mongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (s *MongoStore) InsertCertificate(ctx context.Context, cert *models.Certificate) error {
	col, err := s.collection(certificatesCollection)
	if err != nil {
		return err
	}
	_, err = col.InsertOne(ctx, cert)
	return mongoErr(err)
}

func (s *MongoStore) FindCertificate(ctx context.Context, field, value string) (*models.Certificate, error) {
	if !isLookupField(field) {
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}
	col, err := s.collection(certificatesCollection)
	if err != nil {
		return nil, err
	}

	var cert models.Certificate
	if err := col.FindOne(ctx, bson.M{field: value}).Decode(&cert); err != nil {
		return nil, mongoErr(err)
	}
	return &cert, nil
}

func (s *MongoStore) ListCertificates(ctx context.Context, limit int64) ([]models.Certificate, error) {
	col, err := s.collection(certificatesCollection)
	if err != nil {
		return nil, err
	}

	// ObjectIDs grow with insertion time.
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mongoErr(err)
	}
	defer cursor.Close(ctx)

	certs := make([]models.Certificate, 0)
	if err := cursor.All(ctx, &certs); err != nil {
		return nil, mongoErr(err)
	}
	return certs, nil
}

func (s *MongoStore) InsertUser(ctx context.Context, user *models.User) error {
	col, err := s.collection(usersCollection)
	if err != nil {
		return err
	}
	_, err = col.InsertOne(ctx, user)
	return mongoErr(err)
}

func (s *MongoStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	col, err := s.collection(usersCollection)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := col.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, mongoErr(err)
	}
	return &user, nil
}

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	col, err := s.collection(usersCollection)
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, mongoErr(err)
	}
	return n, nil
}

func (s *MongoStore) ClaimMarker(ctx context.Context, name string) error {
	col, err := s.collection(systemCollection)
	if err != nil {
		return err
	}
	_, err = col.InsertOne(ctx, bson.M{"_id": name, "claimed_at": time.Now().UTC()})
	return mongoErr(err)
}

func (s *MongoStore) ReleaseMarker(ctx context.Context, name string) error {
	col, err := s.collection(systemCollection)
	if err != nil {
		return err
	}
	_, err = col.DeleteOne(ctx, bson.M{"_id": name})
	return mongoErr(err)
}

// EnsureIndexes creates the unique indexes the services rely on.
// Called on startup from main after Mongo has connected.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		certificatesCollection: {
			{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetName("uniq_certificate_id").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "verification_id", Value: 1}},
				Options: options.Index().SetName("uniq_verification_id").SetUnique(true),
			},
		},
		usersCollection: {
			{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetName("uniq_user_id").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName("uniq_username").SetUnique(true),
			},
		},
	}

	for _, name := range []string{certificatesCollection, usersCollection} {
		col, err := s.collection(name)
		if err != nil {
			return err
		}
		if _, err := col.Indexes().CreateMany(ctx, indexes[name]); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, mongoErr(err))
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	return mongoErr(s.db.Client().Ping(ctx, readpref.Primary()))
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Client().Disconnect(ctx)
}
