package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codetyper/codetyper-api/internal/core/ports"
)

// sampleOne decodes one random document matching filter into out, or returns
// mongo.ErrNoDocuments when nothing matches.
func sampleOne(ctx context.Context, col *mongo.Collection, filter bson.M, out any) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	}
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return err
		}
		return mongo.ErrNoDocuments
	}
	return cur.Decode(out)
}

func upsert() *options.ReplaceOptions {
	return options.Replace().SetUpsert(true)
}

// pageOptions sorts oldest first, with the id as a tie-breaker so pages do not
// overlap.
func pageOptions(page ports.Page) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Size))
}
