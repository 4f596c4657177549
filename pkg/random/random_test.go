package random

import "testing"

func TestIntn(t *testing.T) {
	t.Run("stays within bounds", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v, err := Intn(7)
			if err != nil {
				t.Fatalf("Intn(7) returned error: %v", err)
			}
			if v < 0 || v >= 7 {
				t.Fatalf("Intn(7) = %d, want value in [0, 7)", v)
			}
		}
	})

	t.Run("bound of one is deterministic", func(t *testing.T) {
		v, err := Intn(1)
		if err != nil {
			t.Fatalf("Intn(1) returned error: %v", err)
		}
		if v != 0 {
			t.Fatalf("Intn(1) = %d, want 0", v)
		}
	})

	t.Run("rejects non-positive bounds", func(t *testing.T) {
		if _, err := Intn(0); err == nil {
			t.Fatal("Intn(0) succeeded, want error")
		}
		if _, err := Intn(-3); err == nil {
			t.Fatal("Intn(-3) succeeded, want error")
		}
	})
}
