package repository

import (
	"context"

	"checkout-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CourseRepository is the catalog read side consumed at checkout time
// for price snapshots.
type CourseRepository interface {
	FindByCourseIDs(ctx context.Context, courseIDs []string) (map[string]models.Course, error)
}

type MongoCourseRepository struct {
	coll *mongo.Collection
}

func NewMongoCourseRepository(db *mongo.Database) *MongoCourseRepository {
	return &MongoCourseRepository{coll: db.Collection("courses")}
}

// FindByCourseIDs returns the matching courses keyed by course id.
// Missing ids are simply absent from the map; the caller decides
// whether that aborts the operation.
func (r *MongoCourseRepository) FindByCourseIDs(ctx context.Context, courseIDs []string) (map[string]models.Course, error) {
	result := make(map[string]models.Course, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"course_id": bson.M{"$in": courseIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var courses []models.Course
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	for _, c := range courses {
		result[c.CourseID] = c
	}
	return result, nil
}
