package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

const collectionLanguages = "languages"

// LanguageRepository keys languages by their lower-cased name, which makes the
// primary key itself enforce case-insensitive uniqueness.
type LanguageRepository struct {
	col *mongo.Collection
}

func NewLanguageRepository(db *mongo.Database) *LanguageRepository {
	return &LanguageRepository{col: db.Collection(collectionLanguages)}
}

type languageDoc struct {
	Key  string `bson:"_id"`
	Name string `bson:"name"`
}

func languageKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *LanguageRepository) Create(ctx context.Context, lang domain.Language) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := languageDoc{Key: languageKey(lang.Name), Name: lang.Name}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return createErr("insert language", err, domain.ErrLanguageExists)
	}
	return nil
}

func (r *LanguageRepository) Exists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": languageKey(name)}, options.Count().SetLimit(1))
	if err != nil {
		return false, wrap("count languages", err)
	}
	return n > 0, nil
}

func (r *LanguageRepository) FindAll(ctx context.Context) ([]domain.Language, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, wrap("find languages", err)
	}
	var docs []languageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("decode languages", err)
	}

	langs := make([]domain.Language, 0, len(docs))
	for _, d := range docs {
		langs = append(langs, domain.Language{Name: d.Name})
	}
	return langs, nil
}

func (r *LanguageRepository) FindByName(ctx context.Context, name string) (*domain.Language, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc languageDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": languageKey(name)}).Decode(&doc); err != nil {
		return nil, findErr("find language", err, domain.ErrLanguageNotFound)
	}
	return &domain.Language{Name: doc.Name}, nil
}
