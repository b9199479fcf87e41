package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User carries the entitlement set: the course ids this user may
// access. The array is kept duplicate-free with $addToSet.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           string             `bson:"user_id" json:"user_id"`
	Name             string             `bson:"name,omitempty" json:"name,omitempty"`
	Email            string             `bson:"email,omitempty" json:"email,omitempty"`
	PurchasedCourses []string           `bson:"purchased_courses" json:"purchased_courses"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// Owns reports whether the user is entitled to the given course.
func (u *User) Owns(courseID string) bool {
	for _, id := range u.PurchasedCourses {
		if id == courseID {
			return true
		}
	}
	return false
}
