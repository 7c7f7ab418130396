package pipeline

import (
	"sync"
	"time"

	"taketake/internal/services"
)

// StageName identifies one of the eight stage actors in the graph.
type StageName string

const (
	StageSetup   StageName = "setup"
	StageListen  StageName = "listen"
	StagePrompt  StageName = "prompt"
	StageFlacenc StageName = "flacenc"
	StagePargen  StageName = "pargen"
	StageXdelta  StageName = "xdelta"
	StageCleanup StageName = "cleanup"
	StageFinish  StageName = "finish"
)

// Stages lists every stage in graph order, the order setup emits indices.
var Stages = []StageName{
	StageSetup, StageListen, StagePrompt, StageFlacenc,
	StagePargen, StageXdelta, StageCleanup, StageFinish,
}

// StageState is the per-file, per-stage outcome recorded in FileInfo.
type StageState int

const (
	StagePending StageState = iota
	StageRunning
	StageSucceeded
	StageFailed
	StageSkipped
)

func (s StageState) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageRunning:
		return "running"
	case StageSucceeded:
		return "succeeded"
	case StageFailed:
		return "failed"
	case StageSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// FileInfo tracks one source recording through the whole pipeline. The
// Source* fields and ProgressDir and Index are set once by setup and never
// mutated again; the remaining fields accumulate state as each stage runs.
// Access is serialized by the pipeline's channel hand-off — a stage never
// reads or writes a FileInfo still owned by another stage — so FileInfo
// itself carries no lock beyond the one guarding StageStatus and the
// Failed* fields below, which the concurrently running listen and flacenc
// branches both update for the same file.
type FileInfo struct {
	SourcePath    string
	SourceSize    int64
	SourceModTime time.Time
	ProgressDir   string
	Index         int

	mu sync.Mutex

	GuessedTimestamp time.Time
	GuessedFilename  string
	ProvidedFilename string
	LowConfidence    bool
	Duration         time.Duration
	Notes            []string

	StageStatus [len(Stages)]StageState
	FailedKind  services.FileErrorKind
	FailedStage StageName
	FailedErr   error
}

// SetStageState records the outcome of a stage for this file.
func (f *FileInfo) SetStageState(stage StageName, state StageState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StageStatus[stageIndex(stage)] = state
}

// StageStateOf reports the current outcome of a stage for this file.
func (f *FileInfo) StageStateOf(stage StageName) StageState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.StageStatus[stageIndex(stage)]
}

// Fail records a failure against this file: the kind, which stage caused
// it, and the underlying error. Idempotent — the first failure wins.
func (f *FileInfo) Fail(stage StageName, kind services.FileErrorKind, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailedErr != nil {
		return
	}
	f.FailedStage = stage
	f.FailedKind = kind
	f.FailedErr = err
	f.StageStatus[stageIndex(stage)] = StageFailed
}

// Failed reports whether this file has failed in any stage so far.
func (f *FileInfo) Failed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.FailedErr != nil
}

func stageIndex(stage StageName) int {
	for i, s := range Stages {
		if s == stage {
			return i
		}
	}
	return 0
}

// Token is the unit of work passed between stage queues: the index of a
// FileInfo in the shared slice, and whether it has already failed upstream
// (in which case downstream stages must skip any destructive action).
type Token struct {
	Index  int
	Failed bool
}

// SentinelIndex marks the end of a stage's output stream.
const SentinelIndex = -1

// Sentinel is the terminal token every stage emits after its last file.
var Sentinel = Token{Index: SentinelIndex}

// IsSentinel reports whether t is the terminal token.
func (t Token) IsSentinel() bool {
	return t.Index == SentinelIndex
}

// FileOutcome summarizes one file's final disposition for the end-of-run
// report.
type FileOutcome struct {
	SourcePath string
	Filename   string
	Status     string
	Stage      StageName
	ErrorText  string
	Duration   time.Duration
}
