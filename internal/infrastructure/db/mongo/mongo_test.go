package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codetyper/codetyper-api/internal/core/ports"
)

// Every repository that owns indexes must be accepted by EnsureIndexes.
var _ = []indexer{
	(*IdentityRepository)(nil),
	(*TaskRepository)(nil),
	(*SnippetRepository)(nil),
	(*AuditRepository)(nil),
}

func TestPageOptions(t *testing.T) {
	opts := pageOptions(ports.Page{Number: 3, Size: 15})

	if opts.Skip == nil || *opts.Skip != 30 {
		t.Fatalf("expected skip 30, got %v", opts.Skip)
	}
	if opts.Limit == nil || *opts.Limit != 15 {
		t.Fatalf("expected limit 15, got %v", opts.Limit)
	}
	sort, ok := opts.Sort.(bson.D)
	if !ok || len(sort) != 2 || sort[0].Key != "created_at" || sort[1].Key != "_id" {
		t.Fatalf("unexpected sort: %v", opts.Sort)
	}
}

func TestShownSnippetQuery(t *testing.T) {
	q := shownSnippetQuery(ports.SnippetFilter{})
	if len(q) != 1 || q["shown"] != true {
		t.Fatalf("unfiltered query should only match shown: %v", q)
	}

	q = shownSnippetQuery(ports.SnippetFilter{TaskID: "t-1", LanguageName: "C++"})
	if q["task_id"] != "t-1" {
		t.Fatalf("task filter missing: %v", q)
	}
	re, ok := q["language_name"].(primitive.Regex)
	if !ok {
		t.Fatalf("language filter should be a regex, got %T", q["language_name"])
	}
	if re.Pattern != `^C\+\+$` || re.Options != "i" {
		t.Fatalf("language must match exactly, ignoring case: %+v", re)
	}
}
