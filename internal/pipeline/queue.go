package pipeline

// NewQueue allocates a bounded token channel. capacity mirrors
// Workflow.QueueCapacity: small enough to apply backpressure between
// stages, large enough that a fast stage doesn't stall waiting for a slow
// neighbor to drain one token at a time.
func NewQueue(capacity int) chan Token {
	if capacity <= 0 {
		capacity = 1
	}
	return make(chan Token, capacity)
}

// Barrier drains in from upstream, buffering every token until the
// upstream sentinel arrives, then replays the buffered tokens (sentinel
// last) onto the returned channel. This implements the All(X) fan-in edge:
// a downstream stage reading from Barrier's output never observes a token
// from X until X has completely finished, so cleanup can safely treat "I've
// seen xdelta for file i" as "xdelta is done for every file" once the
// replay starts.
func Barrier(in <-chan Token) <-chan Token {
	out := make(chan Token)
	go func() {
		defer close(out)
		var buffered []Token
		for tok := range in {
			if tok.IsSentinel() {
				break
			}
			buffered = append(buffered, tok)
		}
		for _, tok := range buffered {
			out <- tok
		}
		out <- Sentinel
	}()
	return out
}

// Broadcast copies every token (including the sentinel) from in onto each
// of outs, used where a single stage's output feeds more than one
// downstream stage (setup feeds both listen and flacenc).
func Broadcast(in <-chan Token, outs ...chan Token) {
	go func() {
		defer func() {
			for _, out := range outs {
				close(out)
			}
		}()
		for tok := range in {
			for _, out := range outs {
				out <- tok
			}
			if tok.IsSentinel() {
				return
			}
		}
	}()
}

// Join emits a token for index i only after BOTH a and b have produced a
// token for i (in either order), the combined token's Failed flag set if
// either side failed. A single sentinel is emitted once both inputs have
// signaled completion. This implements the fan-in edge where a downstream
// stage must observe two distinct upstream stages' output for the same
// file before acting on it once (pargen awaits both prompt(i) and
// flacenc(i)).
func Join(a, b <-chan Token) <-chan Token {
	out := make(chan Token)
	go func() {
		defer close(out)
		pending := make(map[int]Token)

		observe := func(tok Token) {
			if other, ok := pending[tok.Index]; ok {
				delete(pending, tok.Index)
				out <- Token{Index: tok.Index, Failed: tok.Failed || other.Failed}
				return
			}
			pending[tok.Index] = tok
		}

		// Once a side closes or sends its sentinel, nil out its local
		// handle so its select case blocks forever instead of firing
		// on every iteration against an already-closed channel.
		for a != nil || b != nil {
			select {
			case tok, ok := <-a:
				if !ok || tok.IsSentinel() {
					a = nil
					continue
				}
				observe(tok)
			case tok, ok := <-b:
				if !ok || tok.IsSentinel() {
					b = nil
					continue
				}
				observe(tok)
			}
		}
		out <- Sentinel
	}()
	return out
}
