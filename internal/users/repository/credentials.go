package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	userserrors "wanderlust/internal/users/errors"
	"wanderlust/pkg/config"
	mongotx "wanderlust/pkg/db/mongo"
	"wanderlust/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CredentialsCollectionName = "Credentials"

type CredentialsRepository interface {
	Create(ctx context.Context, creds *model.Credentials) error
	FindByUsername(ctx context.Context, username string) (*model.Credentials, error)
}

type mongoCredentialsRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCredentialsRepository(cfg *config.Config) CredentialsRepository {
	return &mongoCredentialsRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CredentialsCollectionName),
	}
}

func (r *mongoCredentialsRepository) Create(ctx context.Context, creds *model.Credentials) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	creds.UpdatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, creds); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return userserrors.ErrDuplicateUser
		}
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

func (r *mongoCredentialsRepository) FindByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var creds model.Credentials
	if err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&creds); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to find credentials: %w", err)
	}
	return &creds, nil
}
