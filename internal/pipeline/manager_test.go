package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"taketake/internal/config"
	"taketake/internal/services"
)

type fakeStage struct {
	name    StageName
	kind    services.FileErrorKind
	fail    map[int]bool
	process func(f *FileInfo) error
}

func (s *fakeStage) Name() StageName { return s.name }

func (s *fakeStage) FailureKind() services.FileErrorKind { return s.kind }

func (s *fakeStage) Process(ctx context.Context, f *FileInfo) error {
	if s.fail != nil && s.fail[f.Index] {
		return errors.New("boom")
	}
	if s.process != nil {
		return s.process(f)
	}
	return nil
}

func newStage(name StageName, kind services.FileErrorKind) *fakeStage {
	return &fakeStage{name: name, kind: kind}
}

func TestManagerRunCompletesAllStagesForEveryFile(t *testing.T) {
	cfg := &config.Config{}
	cfg.Workflow.QueueCapacity = 4

	stages := StageSet{
		Setup:   newStage(StageSetup, services.KindSetupFail),
		Listen:  newStage(StageListen, services.KindSpeechRecogFail),
		Prompt:  newStage(StagePrompt, services.KindPromptValidation),
		Flacenc: newStage(StageFlacenc, services.KindEncodeFail),
		Pargen:  newStage(StagePargen, services.KindPar2CreateFail),
		Xdelta:  newStage(StageXdelta, services.KindXdeltaMismatch),
		Cleanup: newStage(StageCleanup, services.KindCopybackVerifyFail),
		Finish:  newStage(StageFinish, services.KindAborted),
	}

	m := NewManager(cfg, nil, stages)

	files := make([]*FileInfo, 3)
	for i := range files {
		files[i] = &FileInfo{SourcePath: "rec.wav", Index: i}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outcomes, err := m.Run(ctx, files)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Status != "completed" {
			t.Errorf("file %d: expected completed, got %q (stage %s, err %q)", i, o.Status, o.Stage, o.ErrorText)
		}
	}
	for _, f := range files {
		for _, stage := range Stages {
			if got := f.StageStateOf(stage); got != StageSucceeded {
				t.Errorf("file %d stage %s: expected succeeded, got %s", f.Index, stage, got)
			}
		}
	}
}

func TestManagerRunPropagatesFailureToDownstreamStages(t *testing.T) {
	cfg := &config.Config{}
	cfg.Workflow.QueueCapacity = 4

	stages := StageSet{
		Setup:   newStage(StageSetup, services.KindSetupFail),
		Listen:  newStage(StageListen, services.KindSpeechRecogFail),
		Prompt:  newStage(StagePrompt, services.KindPromptValidation),
		Flacenc: &fakeStage{name: StageFlacenc, kind: services.KindEncodeFail, fail: map[int]bool{1: true}},
		Pargen:  newStage(StagePargen, services.KindPar2CreateFail),
		Xdelta:  newStage(StageXdelta, services.KindXdeltaMismatch),
		Cleanup: newStage(StageCleanup, services.KindCopybackVerifyFail),
		Finish:  newStage(StageFinish, services.KindAborted),
	}

	m := NewManager(cfg, nil, stages)

	files := make([]*FileInfo, 3)
	for i := range files {
		files[i] = &FileInfo{SourcePath: "rec.wav", Index: i}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outcomes, err := m.Run(ctx, files)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcomes[1].Status != "failed" {
		t.Fatalf("expected file 1 to fail, got %+v", outcomes[1])
	}
	if outcomes[1].Stage != StageFlacenc {
		t.Fatalf("expected failure recorded at flacenc, got %s", outcomes[1].Stage)
	}
	if outcomes[0].Status != "completed" || outcomes[2].Status != "completed" {
		t.Fatalf("expected unaffected files to complete, got %+v / %+v", outcomes[0], outcomes[2])
	}

	if state := files[1].StageStateOf(StageCleanup); state != StageSkipped {
		t.Errorf("expected cleanup to be skipped for failed file, got %s", state)
	}
}

func TestManagerRunRejectsMissingStage(t *testing.T) {
	cfg := &config.Config{}
	cfg.Workflow.QueueCapacity = 4
	m := NewManager(cfg, nil, StageSet{Setup: newStage(StageSetup, services.KindSetupFail)})

	_, err := m.Run(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for incomplete stage set")
	}
}
