package migrate

import (
	"context"
	"errors"
	"testing"
)

type fakeDB struct {
	target  int
	stored  int
	steps   []int
	failAt  int // version whose step fails; 0 disables
	persist int // times SetStoredVersion was called
}

func (f *fakeDB) Name() string       { return "fake" }
func (f *fakeDB) TargetVersion() int { return f.target }

func (f *fakeDB) StoredVersion(ctx context.Context) (int, error) {
	return f.stored, nil
}

func (f *fakeDB) SetStoredVersion(ctx context.Context, version int) error {
	f.stored = version
	f.persist++
	return nil
}

func (f *fakeDB) MigrateStep(ctx context.Context, to int) error {
	if f.failAt != 0 && to == f.failAt {
		return errors.New("step failed")
	}
	f.steps = append(f.steps, to)
	return nil
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("applies steps in ascending order", func(t *testing.T) {
		db := &fakeDB{target: 3}
		if err := Run(ctx, db); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}

		want := []int{1, 2, 3}
		if len(db.steps) != len(want) {
			t.Fatalf("ran %d steps, want %d", len(db.steps), len(want))
		}
		for i, v := range want {
			if db.steps[i] != v {
				t.Errorf("step %d migrated to %d, want %d", i, db.steps[i], v)
			}
		}
		if db.stored != 3 {
			t.Errorf("stored version = %d, want 3", db.stored)
		}
	})

	t.Run("starts after the stored version", func(t *testing.T) {
		db := &fakeDB{target: 3, stored: 2}
		if err := Run(ctx, db); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if len(db.steps) != 1 || db.steps[0] != 3 {
			t.Fatalf("steps = %v, want [3]", db.steps)
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		db := &fakeDB{target: 2}
		if err := Run(ctx, db); err != nil {
			t.Fatalf("first Run returned error: %v", err)
		}
		db.steps = nil

		if err := Run(ctx, db); err != nil {
			t.Fatalf("second Run returned error: %v", err)
		}
		if len(db.steps) != 0 {
			t.Errorf("second run applied steps %v, want none", db.steps)
		}
		if db.stored != 2 {
			t.Errorf("stored version changed to %d", db.stored)
		}
		if db.persist != 1 {
			t.Errorf("version persisted %d times, want 1", db.persist)
		}
	})

	t.Run("failed step leaves version untouched", func(t *testing.T) {
		db := &fakeDB{target: 3, failAt: 2}
		if err := Run(ctx, db); err == nil {
			t.Fatal("Run succeeded, want error")
		}
		if db.stored != 0 {
			t.Errorf("stored version = %d after failure, want 0", db.stored)
		}
		if db.persist != 0 {
			t.Errorf("version persisted after failure")
		}
		// Retry succeeds from the same version and re-runs step 1.
		db.failAt = 0
		db.steps = nil
		if err := Run(ctx, db); err != nil {
			t.Fatalf("retry returned error: %v", err)
		}
		if len(db.steps) != 3 {
			t.Errorf("retry ran steps %v, want [1 2 3]", db.steps)
		}
	})

	t.Run("stored ahead of target is a no-op", func(t *testing.T) {
		db := &fakeDB{target: 1, stored: 5}
		if err := Run(ctx, db); err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if len(db.steps) != 0 || db.stored != 5 {
			t.Errorf("steps = %v, stored = %d; want no change", db.steps, db.stored)
		}
	})
}
