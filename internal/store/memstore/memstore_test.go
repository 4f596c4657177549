package memstore

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestMergeWritesNamedFieldsOnly(t *testing.T) {
	ctx := context.Background()
	st := New()

	id, err := st.Add(ctx, "things", bson.M{"kept": "original", "note": "original"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	err = st.Set(ctx, "things", id, bson.M{"note": "edited", "kept": "clobbered"}, "note")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	doc, err := st.Get(ctx, "things", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Data["note"] != "edited" {
		t.Fatalf("merged field note = %v, want edited", doc.Data["note"])
	}
	if doc.Data["kept"] != "original" {
		t.Fatalf("unnamed field kept = %v, want untouched", doc.Data["kept"])
	}
	if doc.CreateTime.IsZero() {
		t.Fatal("merge must not disturb the creation timestamp")
	}
}

// A Set without merge fields is a full replace on MongoDB, which discards
// every stored field the new document lacks, the creation timestamp
// included. The in-memory store must fail the same way.
func TestReplaceDropsUnnamedFields(t *testing.T) {
	ctx := context.Background()
	st := New()

	id, err := st.Add(ctx, "things", bson.M{"kept": "original", "note": "original"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := st.Set(ctx, "things", id, bson.M{"note": "replaced"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	doc, err := st.Get(ctx, "things", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := doc.Data["kept"]; ok {
		t.Fatal("replace must drop fields absent from the new document")
	}
	if !doc.CreateTime.IsZero() {
		t.Fatal("replace must drop the creation timestamp, as the real backend does")
	}
}
