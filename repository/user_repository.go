package repository

import (
	"context"
	"errors"
	"time"

	"checkout-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository owns the entitlement set on the user record.
type UserRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.User, error)
	// GrantCourses adds the given course ids to the user's access set.
	// Set semantics: repeated grants for overlapping sets are no-ops
	// for the overlap. Course ids are stored as opaque references, so
	// a deleted course neither blocks the grant nor crashes it.
	GrantCourses(ctx context.Context, userID string, courseIDs []string) error
	OwnsCourse(ctx context.Context, userID, courseID string) (bool, error)
}

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection("users")}
}

func (r *MongoUserRepository) FindByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) GrantCourses(ctx context.Context, userID string, courseIDs []string) error {
	if len(courseIDs) == 0 {
		return nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$addToSet": bson.M{"purchased_courses": bson.M{"$each": courseIDs}},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) OwnsCourse(ctx context.Context, userID, courseID string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"user_id":           userID,
		"purchased_courses": courseID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
