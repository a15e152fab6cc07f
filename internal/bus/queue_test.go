package bus

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFIFOOrder(t *testing.T) {
	var q FIFO[int]
	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	if q.Len() != 5 {
		t.Fatalf("len = %d, want 5", q.Len())
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		if !ok || v != i {
			t.Fatalf("pop #%d = %d/%v, want %d/true", i, v, ok, i)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("pop on empty queue succeeded")
	}
}

func TestMailboxFull(t *testing.T) {
	m := NewMailbox[int](2)
	if err := m.TryPost(1); err != nil {
		t.Fatalf("post 1: %v", err)
	}
	if err := m.TryPost(2); err != nil {
		t.Fatalf("post 2: %v", err)
	}
	if err := m.TryPost(3); !errors.Is(err, ErrMailboxFull) {
		t.Fatalf("post 3 = %v, want ErrMailboxFull", err)
	}
	if v := <-m.C(); v != 1 {
		t.Fatalf("recv = %d, want 1", v)
	}
}

func TestMailboxClosed(t *testing.T) {
	m := NewMailbox[int](1)
	m.Close()
	if err := m.TryPost(1); !errors.Is(err, ErrMailboxClosed) {
		t.Fatalf("post after close = %v, want ErrMailboxClosed", err)
	}
	m.Close() // idempotent
}

func TestMailboxCloseDuringPosts(t *testing.T) {
	m := NewMailbox[int](4)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if err := m.TryPost(1); errors.Is(err, ErrMailboxClosed) {
					return
				}
				select {
				case <-m.C():
				default:
				}
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	m.Close() // must not panic against in-flight posts
	close(stop)
	wg.Wait()

	if err := m.TryPost(1); !errors.Is(err, ErrMailboxClosed) {
		t.Fatalf("post after close = %v, want ErrMailboxClosed", err)
	}
}
