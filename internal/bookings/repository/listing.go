package repository

import (
	"context"
	"fmt"

	"wanderlust/pkg/config"
	mongotx "wanderlust/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ListingsCollectionName = "Listings"

// ListingLookup is the read-only view of listings the booking service needs.
type ListingLookup interface {
	Exists(ctx context.Context, listingID string) (bool, error)
}

type mongoListingLookup struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoListingLookup(cfg *config.Config) ListingLookup {
	return &mongoListingLookup{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(ListingsCollectionName),
	}
}

// Exists reports false for ids that are not valid ObjectIDs.
func (r *mongoListingLookup) Exists(ctx context.Context, listingID string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return false, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check listing: %w", err)
	}
	return count > 0, nil
}
