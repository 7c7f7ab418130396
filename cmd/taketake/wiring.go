package main

import (
	"taketake/internal/config"
	"taketake/internal/pipeline"
	"taketake/internal/pipeline/stages/cleanup"
	"taketake/internal/pipeline/stages/finish"
	"taketake/internal/pipeline/stages/flacenc"
	"taketake/internal/pipeline/stages/listen"
	"taketake/internal/pipeline/stages/pargen"
	"taketake/internal/pipeline/stages/prompt"
	"taketake/internal/pipeline/stages/setup"
	"taketake/internal/pipeline/stages/xdelta"
	prompter "taketake/internal/prompt"
	"taketake/internal/services/flac"
	"taketake/internal/services/par2"
	"taketake/internal/services/speech"
	"taketake/internal/services/xdelta3"
)

// buildStageSet wires the real, binary-backed clients into every stage,
// the composition the taketake CLI uses for a live run. Tests build their
// own StageSet out of fakes instead of calling this.
func buildStageSet(cfg *config.Config, prompterImpl prompter.Interface) pipeline.StageSet {
	flacClient := flac.NewCLI(flac.WithBinary(cfg.Tools.FlacBinary))
	speechClient := speech.NewCLI(
		speech.WithSpeechBinary(cfg.Tools.SpeechBinary),
		speech.WithFfmpegBinary(cfg.Tools.FfmpegBinary),
		speech.WithFfprobeBinary(cfg.Tools.FfprobeBinary),
	)
	par2Client := par2.NewCLI(par2.WithBinary(cfg.Tools.Par2Binary))
	xdeltaClient := xdelta3.NewCLI(xdelta3.WithBinary(cfg.Tools.Xdelta3Binary))

	if prompterImpl == nil {
		prompterImpl = prompter.NewTerminal()
	}

	return pipeline.StageSet{
		Setup:   setup.Stage{},
		Listen:  listen.Stage{Speech: speechClient, Cfg: cfg},
		Prompt:  &prompt.Stage{Prompter: prompterImpl, Cfg: cfg},
		Flacenc: flacenc.Stage{Flac: flacClient},
		Pargen:  pargen.Stage{Par2: par2Client, Cfg: cfg},
		Xdelta:  xdelta.Stage{Xdelta: xdeltaClient, Flac: flacClient, Cfg: cfg},
		Cleanup: cleanup.Stage{Par2: par2Client, Cfg: cfg},
		Finish:  finish.Stage{},
	}
}
