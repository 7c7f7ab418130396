package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"taketake/internal/config"
	"taketake/internal/logging"
)

// StageSet collects the eight stage implementations the Manager wires into
// the graph described in package doc.go.
type StageSet struct {
	Setup   Stage
	Listen  Stage
	Prompt  Stage
	Flacenc Stage
	Pargen  Stage
	Xdelta  Stage
	Cleanup Stage
	Finish  Stage
}

// Manager coordinates one archival run: it owns the run's configuration,
// logger, and the flock guarding the progress directory, and wires the
// eight-stage actor graph on every Run call.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	stages StageSet

	mu   sync.Mutex
	lock *flock.Flock
}

// NewManager constructs a Manager. stages must have every field populated;
// Run returns an error naming any nil stage rather than silently skipping one.
func NewManager(cfg *config.Config, logger *slog.Logger, stages StageSet) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{cfg: cfg, logger: logging.NewComponentLogger(logger, "pipeline"), stages: stages}
}

// Run builds the token-queue graph for files, starts one goroutine per
// stage, and blocks until finish has processed every file (or the sentinel
// has propagated end to end after a cancellation). It returns the final
// per-file outcomes in source order.
func (m *Manager) Run(ctx context.Context, files []*FileInfo) ([]FileOutcome, error) {
	for name, s := range map[StageName]Stage{
		StageSetup: m.stages.Setup, StageListen: m.stages.Listen, StagePrompt: m.stages.Prompt,
		StageFlacenc: m.stages.Flacenc, StagePargen: m.stages.Pargen, StageXdelta: m.stages.Xdelta,
		StageCleanup: m.stages.Cleanup, StageFinish: m.stages.Finish,
	} {
		if s == nil {
			return nil, fmt.Errorf("pipeline: stage %s not registered", name)
		}
	}

	capacity := m.cfg.Workflow.QueueCapacity

	setupOut := NewQueue(capacity)
	toListen := NewQueue(capacity)
	toFlacenc := NewQueue(capacity)
	listenOut := NewQueue(capacity)
	promptOut := NewQueue(capacity)
	flacencOut := NewQueue(capacity)
	toXdelta := NewQueue(capacity)
	toPargenJoin := NewQueue(capacity)
	xdeltaOut := NewQueue(capacity)
	pargenOut := NewQueue(capacity)
	cleanupOut := NewQueue(capacity)
	finishOut := NewQueue(capacity)

	var wg sync.WaitGroup
	run := func(stage Stage, in <-chan Token, out chan<- Token) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RunStage(ctx, stage, files, in, out, m.logger)
		}()
	}

	run(m.stages.Setup, m.seedTokens(files), setupOut)
	Broadcast(setupOut, toListen, toFlacenc)
	run(m.stages.Listen, toListen, listenOut)
	run(m.stages.Prompt, listenOut, promptOut)
	run(m.stages.Flacenc, toFlacenc, flacencOut)
	Broadcast(flacencOut, toXdelta, toPargenJoin)
	run(m.stages.Xdelta, toXdelta, xdeltaOut)

	pargenIn := Join(promptOut, toPargenJoin)
	run(m.stages.Pargen, pargenIn, pargenOut)

	xdeltaBarrier := Barrier(xdeltaOut)
	cleanupIn := Join(pargenOut, xdeltaBarrier)
	run(m.stages.Cleanup, cleanupIn, cleanupOut)

	run(m.stages.Finish, cleanupOut, finishOut)

	go func() {
		for range finishOut {
		}
	}()

	wg.Wait()

	outcomes := make([]FileOutcome, len(files))
	for i, f := range files {
		outcomes[i] = outcomeFor(f)
	}
	return outcomes, nil
}

// seedTokens builds the initial token stream setup consumes: one token per
// file in index order, followed by the sentinel.
func (m *Manager) seedTokens(files []*FileInfo) <-chan Token {
	out := make(chan Token, len(files)+1)
	for i := range files {
		out <- Token{Index: i}
	}
	out <- Sentinel
	close(out)
	return out
}

// AcquireLock takes an exclusive, non-blocking lock on the progress
// directory so two runs never process the same source medium concurrently.
func (m *Manager) AcquireLock(progressParentDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock := flock.New(filepath.Join(progressParentDir, ".taketake.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire progress lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("acquire progress lock: another taketake run holds %s", lock.Path())
	}
	m.lock = lock
	return nil
}

// ReleaseLock releases the progress directory lock acquired by
// AcquireLock. It is a no-op if no lock is held.
func (m *Manager) ReleaseLock() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lock == nil {
		return nil
	}
	err := m.lock.Unlock()
	m.lock = nil
	return err
}

func outcomeFor(f *FileInfo) FileOutcome {
	status := "completed"
	stage := StageFinish
	errText := ""
	if f.Failed() {
		status = "failed"
		stage = f.FailedStage
		if f.FailedErr != nil {
			errText = f.FailedErr.Error()
		}
	}
	name := f.ProvidedFilename
	if name == "" {
		name = f.GuessedFilename
	}
	return FileOutcome{
		SourcePath: f.SourcePath,
		Filename:   name,
		Status:     status,
		Stage:      stage,
		ErrorText:  errText,
		Duration:   f.Duration,
	}
}
