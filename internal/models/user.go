package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DefaultStatus is assigned to every new user
const DefaultStatus = "I am new!"

// User represents a user in the system
type User struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name     string               `bson:"name" json:"name"`
	Email    string               `bson:"email" json:"email"`
	Password string               `bson:"password" json:"-"` // bcrypt hash, never serialized
	Status   string               `bson:"status" json:"status"`
	Posts    []primitive.ObjectID `bson:"posts" json:"posts"`
}
