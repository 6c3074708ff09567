package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

const collectionAuthEvents = "auth_events"

// AuditRepository appends to the auth_events audit trail.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuthEvents)}
}

// InsertAuthEvent persists one audit entry. Credentials are never part of an
// event, so the document is safe to keep indefinitely.
func (r *AuditRepository) InsertAuthEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"kind":        string(event.Kind),
		"username":    event.Username,
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.UserID != "" {
		doc["user_id"] = event.UserID
	}
	if event.Role != "" {
		doc["role"] = event.Role.String()
	}
	if event.ActorID != "" {
		doc["actor_id"] = event.ActorID
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return wrap("insert auth event", err)
	}
	return nil
}

func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}}, Options: options.Index().SetName("kind")},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
