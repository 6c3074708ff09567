package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
)

const (
	collectionTasks         = "tasks"
	collectionArchivedTasks = "archived_tasks"
)

type TaskRepository struct {
	col     *mongo.Collection
	archive *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		col:     db.Collection(collectionTasks),
		archive: db.Collection(collectionArchivedTasks),
	}
}

type taskDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Shown       bool      `bson:"shown"`
	CreatorID   string    `bson:"creator_id,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

type archivedTaskDoc struct {
	Task     taskDoc   `bson:",inline"`
	Reason   string    `bson:"reason"`
	StaffID  string    `bson:"staff_id"`
	DeniedAt time.Time `bson:"denied_at"`
}

func toTaskDoc(t *domain.Task) taskDoc {
	return taskDoc{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Shown:       t.Shown,
		CreatorID:   t.CreatorID,
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

func (d taskDoc) toDomain() *domain.Task {
	return &domain.Task{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Shown:       d.Shown,
		CreatorID:   d.CreatorID,
		CreatedAt:   d.CreatedAt,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toTaskDoc(task)); err != nil {
		return wrap("insert task", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, findErr("find task", err, domain.ErrTaskNotFound)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) CountByShown(ctx context.Context, shown bool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"shown": shown})
	if err != nil {
		return 0, wrap("count tasks", err)
	}
	return n, nil
}

func (r *TaskRepository) RandomByShown(ctx context.Context, shown bool) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDoc
	if err := sampleOne(ctx, r.col, bson.M{"shown": shown}, &doc); err != nil {
		return nil, findErr("sample task", err, domain.ErrTaskNotFound)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) ListShown(ctx context.Context, page ports.Page) ([]domain.Task, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"shown": true}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrap("count shown tasks", err)
	}

	cur, err := r.col.Find(ctx, filter, pageOptions(page))
	if err != nil {
		return nil, 0, wrap("list shown tasks", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, wrap("decode shown tasks", err)
	}

	tasks := make([]domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, *d.toDomain())
	}
	return tasks, total, nil
}

func (r *TaskRepository) Accept(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "shown": false}, bson.M{"$set": bson.M{"shown": true}})
	if err != nil {
		return wrap("accept task", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Archive copies the denied task into the archive before removing it. A crash
// between the two steps leaves the task both archived and pending, which a
// second denial resolves.
func (r *TaskRepository) Archive(ctx context.Context, archived *domain.ArchivedTask) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := archivedTaskDoc{
		Task:     toTaskDoc(&archived.Task),
		Reason:   archived.Reason,
		StaffID:  archived.StaffID,
		DeniedAt: archived.DeniedAt.UTC(),
	}
	if _, err := r.archive.ReplaceOne(ctx, bson.M{"_id": doc.Task.ID}, doc, upsert()); err != nil {
		return wrap("archive task", err)
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": archived.ID, "shown": false})
	if err != nil {
		return wrap("delete task", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "shown", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}
