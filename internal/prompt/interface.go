// Package prompt defines the external collaborator contract the prompt
// pipeline stage uses to ask an operator to confirm or correct a guessed
// filename, plus a minimal terminal implementation of it.
package prompt

import "context"

// Interface is the external collaborator the prompt stage drives. Suggest
// presents current (the machine-guessed value) and fallback (any
// previously-confirmed value, used as the editable default) and returns
// whatever the operator accepted, unvalidated — the caller re-prompts on a
// validation failure.
type Interface interface {
	Suggest(ctx context.Context, current, fallback string) (string, error)
}
