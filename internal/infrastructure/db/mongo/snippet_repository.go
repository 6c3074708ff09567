package mongo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
)

const (
	collectionSnippets         = "snippets"
	collectionArchivedSnippets = "archived_snippets"
)

type SnippetRepository struct {
	col     *mongo.Collection
	archive *mongo.Collection
}

func NewSnippetRepository(db *mongo.Database) *SnippetRepository {
	return &SnippetRepository{
		col:     db.Collection(collectionSnippets),
		archive: db.Collection(collectionArchivedSnippets),
	}
}

type snippetDoc struct {
	ID           string    `bson:"_id"`
	Content      string    `bson:"content"`
	Shown        bool      `bson:"shown"`
	LanguageName string    `bson:"language_name"`
	TaskID       string    `bson:"task_id"`
	CreatorID    string    `bson:"creator_id,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

type archivedSnippetDoc struct {
	Snippet  snippetDoc `bson:",inline"`
	Reason   string     `bson:"reason"`
	StaffID  string     `bson:"staff_id"`
	DeniedAt time.Time  `bson:"denied_at"`
}

func toSnippetDoc(s *domain.Snippet) snippetDoc {
	return snippetDoc{
		ID:           s.ID,
		Content:      s.Content,
		Shown:        s.Shown,
		LanguageName: s.LanguageName,
		TaskID:       s.TaskID,
		CreatorID:    s.CreatorID,
		CreatedAt:    s.CreatedAt.UTC(),
	}
}

func (d snippetDoc) toDomain() *domain.Snippet {
	return &domain.Snippet{
		ID:           d.ID,
		Content:      d.Content,
		Shown:        d.Shown,
		LanguageName: d.LanguageName,
		TaskID:       d.TaskID,
		CreatorID:    d.CreatorID,
		CreatedAt:    d.CreatedAt,
	}
}

func (r *SnippetRepository) Create(ctx context.Context, snippet *domain.Snippet) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toSnippetDoc(snippet)); err != nil {
		return wrap("insert snippet", err)
	}
	return nil
}

func (r *SnippetRepository) FindByID(ctx context.Context, id string) (*domain.Snippet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc snippetDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, findErr("find snippet", err, domain.ErrSnippetNotFound)
	}
	return doc.toDomain(), nil
}

func (r *SnippetRepository) RandomByShown(ctx context.Context, shown bool) (*domain.Snippet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc snippetDoc
	if err := sampleOne(ctx, r.col, bson.M{"shown": shown}, &doc); err != nil {
		return nil, findErr("sample snippet", err, domain.ErrSnippetNotFound)
	}
	return doc.toDomain(), nil
}

func (r *SnippetRepository) ListShown(ctx context.Context, filter ports.SnippetFilter, page ports.Page) ([]domain.Snippet, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := shownSnippetQuery(filter)
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, wrap("count shown snippets", err)
	}

	cur, err := r.col.Find(ctx, query, pageOptions(page))
	if err != nil {
		return nil, 0, wrap("list shown snippets", err)
	}
	var docs []snippetDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, wrap("decode shown snippets", err)
	}

	snippets := make([]domain.Snippet, 0, len(docs))
	for _, d := range docs {
		snippets = append(snippets, *d.toDomain())
	}
	return snippets, total, nil
}

func shownSnippetQuery(filter ports.SnippetFilter) bson.M {
	query := bson.M{"shown": true}
	if filter.TaskID != "" {
		query["task_id"] = filter.TaskID
	}
	if filter.LanguageName != "" {
		query["language_name"] = primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(filter.LanguageName) + "$",
			Options: "i",
		}
	}
	return query
}

func (r *SnippetRepository) Accept(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "shown": false}, bson.M{"$set": bson.M{"shown": true}})
	if err != nil {
		return wrap("accept snippet", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSnippetNotFound
	}
	return nil
}

func (r *SnippetRepository) Archive(ctx context.Context, archived *domain.ArchivedSnippet) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := archivedSnippetDoc{
		Snippet:  toSnippetDoc(&archived.Snippet),
		Reason:   archived.Reason,
		StaffID:  archived.StaffID,
		DeniedAt: archived.DeniedAt.UTC(),
	}
	if _, err := r.archive.ReplaceOne(ctx, bson.M{"_id": doc.Snippet.ID}, doc, upsert()); err != nil {
		return wrap("archive snippet", err)
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": archived.ID, "shown": false})
	if err != nil {
		return wrap("delete snippet", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSnippetNotFound
	}
	return nil
}

func (r *SnippetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "shown", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "task_id", Value: 1}}},
		{Keys: bson.D{{Key: "language_name", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
