package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const taskCounterName = "tasks"

// TaskRepo persists tasks in MongoDB. Ids are monotonically increasing
// int64 values handed out by a counters collection, so every task keeps
// a stable integer identity across restarts.
type TaskRepo struct {
	tasks    *mongo.Collection
	counters *mongo.Collection
}

func NewTaskRepo(db *mongo.Database) *TaskRepo {
	return &TaskRepo{
		tasks:    db.Collection("tasks"),
		counters: db.Collection("counters"),
	}
}

// NextID allocates a fresh task id.
func (r *TaskRepo) NextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": taskCounterName},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate task id: %w", err)
	}
	return counter.Seq, nil
}

func (r *TaskRepo) Insert(ctx context.Context, task *models.Task) error {
	if _, err := r.tasks.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	err := r.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task %d: %w", id, err)
	}
	return &task, nil
}

// UpdateStatus sets status and completedAt in a single document write,
// so a concurrent reader can never observe one without the other.
// Returns the post-image.
func (r *TaskRepo) UpdateStatus(ctx context.Context, id int64, status models.TaskStatus, completedAt *time.Time) (*models.Task, error) {
	update := bson.M{"$set": bson.M{"status": status}}
	if completedAt != nil {
		update["$set"].(bson.M)["completedAt"] = *completedAt
	} else {
		update["$unset"] = bson.M{"completedAt": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task models.Task
	err := r.tasks.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task %d status: %w", id, err)
	}
	return &task, nil
}

func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *TaskRepo) All(ctx context.Context) ([]*models.Task, error) {
	return r.find(ctx, bson.M{})
}

// ByAssignee returns the tasks assigned to one user, filtered in the
// database rather than in memory.
func (r *TaskRepo) ByAssignee(ctx context.Context, userID int64) ([]*models.Task, error) {
	return r.find(ctx, bson.M{"assignedTo": userID})
}

func (r *TaskRepo) find(ctx context.Context, filter bson.M) ([]*models.Task, error) {
	cursor, err := r.tasks.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []*models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// AllSorted returns every task in report order, sorted by the database
// itself: pending before completed, then priority weight descending,
// then deadline ascending, with id as the final tie-break. This mirrors
// models.SortTasks so report consumers see the same order as the API.
func (r *TaskRepo) AllSorted(ctx context.Context) ([]*models.Task, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "completedRank", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", models.StatusCompleted}}}, 1, 0,
			}}}},
			{Key: "priorityWeight", Value: bson.D{{Key: "$switch", Value: bson.D{
				{Key: "branches", Value: bson.A{
					bson.D{{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$priority", models.PriorityHigh}}}}, {Key: "then", Value: 3}},
					bson.D{{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$priority", models.PriorityMedium}}}}, {Key: "then", Value: 2}},
					bson.D{{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$priority", models.PriorityLow}}}}, {Key: "then", Value: 1}},
				}},
				{Key: "default", Value: 0},
			}}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "completedRank", Value: 1},
			{Key: "priorityWeight", Value: -1},
			{Key: "deadline", Value: 1},
			{Key: "_id", Value: 1},
		}}},
	}

	cursor, err := r.tasks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to run sorted task query: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []*models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode sorted tasks: %w", err)
	}
	return tasks, nil
}
