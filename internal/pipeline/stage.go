package pipeline

import (
	"context"

	"taketake/internal/services"
)

// Stage is the contract every pipeline actor implements. Process handles one
// file; the runner (see runner.go) owns the channel plumbing, the sentinel
// protocol, and marking downstream tokens failed when Process returns an
// error or the run is cancelled. FailureKind classifies an error Process
// returns with no sentinel marker of its own (see services.KindFor).
type Stage interface {
	Name() StageName
	Process(ctx context.Context, f *FileInfo) error
	FailureKind() services.FileErrorKind
}
