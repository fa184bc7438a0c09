package repositories

import (
	"context"
	"errors"
	"fmt"

	"taskboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepo reads user accounts. Account creation and credential flows
// live in the external account system; this service only resolves
// identities and the employee directory.
type UserRepo struct {
	users *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{users: db.Collection("users")}
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}
	return &user, nil
}

func (r *UserRepo) Employees(ctx context.Context) ([]*models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{"role": models.RoleEmployee})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve employees: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}
	return users, nil
}
