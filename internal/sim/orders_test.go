package sim

import (
	"errors"
	"testing"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()

	if err := tr.ApplyAccept(1); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := tr.ApplyAccept(1); !errors.Is(err, ErrDuplicateOrder) {
		t.Fatalf("duplicate accept = %v, want ErrDuplicateOrder", err)
	}
	if err := tr.ApplyFill(1); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if err := tr.ApplyFill(1); !errors.Is(err, ErrOrderTerminal) {
		t.Fatalf("second fill = %v, want ErrOrderTerminal", err)
	}
	if err := tr.ApplyDrop(1); !errors.Is(err, ErrOrderTerminal) {
		t.Fatalf("drop after fill = %v, want ErrOrderTerminal", err)
	}

	if err := tr.ApplyFill(99); !errors.Is(err, ErrUnknownOrder) {
		t.Fatalf("fill unknown = %v, want ErrUnknownOrder", err)
	}
	if err := tr.ApplyAccept(0); !errors.Is(err, ErrUnknownOrder) {
		t.Fatalf("accept id 0 = %v, want ErrUnknownOrder", err)
	}

	if err := tr.ApplyAccept(2); err != nil {
		t.Fatalf("accept 2: %v", err)
	}
	if err := tr.ApplyDrop(2); err != nil {
		t.Fatalf("drop 2: %v", err)
	}

	filled, dropped := tr.Counts()
	if filled != 1 || dropped != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", filled, dropped)
	}
	if tr.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", tr.Pending())
	}
}
