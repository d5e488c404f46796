// Package mongo creates the collections, validators and indexes the services
// rely on. Every step is idempotent so the job can run on each deploy.
package mongo

import (
	"context"
	"fmt"

	bookingsrepo "wanderlust/internal/bookings/repository"
	listingsrepo "wanderlust/internal/listings/repository"
	"wanderlust/internal/migrations/mongo/validators"
	usersrepo "wanderlust/internal/users/repository"
	"wanderlust/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collection struct {
	Name      string
	Validator bson.M
	Indexes   []mongo.IndexModel
}

var (
	ListingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "geometry", Value: "2dsphere"}}, Options: options.Index().SetSparse(true)},
	}

	ReviewsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "listing_id", Value: 1},
			{Key: "check_in", Value: 1},
			{Key: "check_out", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "check_in", Value: -1},
		}},
	}

	// expired advisory locks are reaped by the TTL monitor; stale-lock
	// takeover in the service covers the gap until it runs
	BookingLocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}

	UsersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	CredentialsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
)

func Collections() []Collection {
	return []Collection{
		{Name: listingsrepo.CollectionName, Validator: validators.ListingValidator, Indexes: ListingsIndexes},
		{Name: listingsrepo.ReviewsCollectionName, Validator: validators.ReviewValidator, Indexes: ReviewsIndexes},
		{Name: bookingsrepo.CollectionName, Validator: validators.BookingValidator, Indexes: BookingsIndexes},
		{Name: bookingsrepo.LocksCollectionName, Validator: validators.BookingLockValidator, Indexes: BookingLocksIndexes},
		{Name: bookingsrepo.GuardsCollectionName, Validator: validators.BookingGuardValidator},
		{Name: usersrepo.CollectionName, Validator: validators.UserValidator, Indexes: UsersIndexes},
		{Name: usersrepo.CredentialsCollectionName, Validator: validators.CredentialsValidator, Indexes: CredentialsIndexes},
	}
}

// RunMigration creates every collection up front. Collections cannot be
// created implicitly inside the multi-document transactions the services run.
func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully", "collections", len(Collections()))
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
