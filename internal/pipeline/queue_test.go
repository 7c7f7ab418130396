package pipeline

import (
	"testing"
	"time"
)

func TestBarrierWithholdsUntilSentinel(t *testing.T) {
	in := make(chan Token)
	out := Barrier(in)

	in <- Token{Index: 0}
	in <- Token{Index: 1}

	select {
	case tok := <-out:
		t.Fatalf("barrier released %+v before the sentinel arrived", tok)
	case <-time.After(20 * time.Millisecond):
	}

	go func() {
		in <- Sentinel
		close(in)
	}()

	tok := <-out
	if tok.Index != 0 {
		t.Fatalf("expected first replayed token to be index 0, got %+v", tok)
	}

	tok = <-out
	if tok.Index != 1 {
		t.Fatalf("expected index 1, got %+v", tok)
	}
	tok = <-out
	if !tok.IsSentinel() {
		t.Fatalf("expected sentinel last, got %+v", tok)
	}
}

func TestJoinPairsBothInputsBeforeEmitting(t *testing.T) {
	a := make(chan Token)
	b := make(chan Token)
	out := Join(a, b)

	go func() {
		a <- Token{Index: 0}
		b <- Token{Index: 1}
		a <- Token{Index: 1, Failed: true}
		b <- Token{Index: 0}
		a <- Sentinel
		b <- Sentinel
	}()

	seen := make(map[int]Token)
	for i := 0; i < 2; i++ {
		tok := <-out
		seen[tok.Index] = tok
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 joined tokens, got %d: %v", len(seen), seen)
	}
	if !seen[1].Failed {
		t.Fatal("expected index 1 to carry the Failed flag from either side")
	}
	if seen[0].Failed {
		t.Fatal("expected index 0 to not be marked failed")
	}

	final := <-out
	if !final.IsSentinel() {
		t.Fatalf("expected sentinel after both pairs, got %+v", final)
	}
}

// TestJoinWaitsQuietlyWhenOneSideFinishesFirst exercises the case where b
// finishes and closes well before a produces its matching token: the
// now-closed channel's select case must stay disabled rather than firing
// on every loop iteration while a is still pending.
func TestJoinWaitsQuietlyWhenOneSideFinishesFirst(t *testing.T) {
	a := make(chan Token)
	b := make(chan Token)
	out := Join(a, b)

	go func() {
		b <- Token{Index: 0}
		close(b)
	}()

	select {
	case tok := <-out:
		t.Fatalf("did not expect a joined token before a produces its match, got %+v", tok)
	case <-time.After(20 * time.Millisecond):
	}

	go func() {
		a <- Token{Index: 0}
		a <- Sentinel
	}()

	tok := <-out
	if tok.Index != 0 {
		t.Fatalf("expected index 0, got %+v", tok)
	}
	final := <-out
	if !final.IsSentinel() {
		t.Fatalf("expected sentinel, got %+v", final)
	}
}

func TestBroadcastFansOutToAllOutputs(t *testing.T) {
	in := make(chan Token)
	out1 := make(chan Token, 2)
	out2 := make(chan Token, 2)
	Broadcast(in, out1, out2)

	go func() {
		in <- Token{Index: 5}
		in <- Sentinel
		close(in)
	}()

	for _, out := range []chan Token{out1, out2} {
		tok := <-out
		if tok.Index != 5 {
			t.Fatalf("expected index 5, got %+v", tok)
		}
		tok = <-out
		if !tok.IsSentinel() {
			t.Fatalf("expected sentinel, got %+v", tok)
		}
	}
}
