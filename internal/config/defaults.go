package config

const (
	defaultProgressParentDir = "."
	defaultLogDir            = "~/.local/share/taketake/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"

	defaultPrefix               = "rec"
	defaultInstrument            = "zoom"
	defaultWeekdayToleranceMins  = 0
	defaultMaxDeltaHours         = 24

	defaultSpeechTimeoutSeconds = 120
	defaultSpeechRetryCount     = 1
	defaultEvictPollSeconds     = 1
	defaultEvictMaxWaitSeconds  = 30
	defaultQueueCapacity        = 8
	defaultFileScanSeconds      = 90
	defaultMinTalkSeconds       = 2.5
	defaultMaxTalkSeconds       = 15
	defaultTalkAttackSeconds    = 0.5
	defaultTalkReleaseSeconds   = 0.5
	defaultSilenceThresholdDBFS = -50
	defaultSilenceMinDurSeconds = 1

	defaultPar2NumVolumes        = 2
	defaultPar2RedundancyPercent = 5
	defaultPar2BaseBlockSize     = 4096
	defaultPar2MaxNumBlocks      = 10000

	defaultFlacBinary    = "flac"
	defaultPar2Binary    = "par2"
	defaultXdelta3Binary = "xdelta3"
	defaultSpeechBinary  = "pocketsphinx"
	defaultFfmpegBinary  = "ffmpeg"
	defaultFfprobeBinary = "ffprobe"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProgressParentDir: defaultProgressParentDir,
			LogDir:            defaultLogDir,
		},
		Naming: Naming{
			Prefix:               defaultPrefix,
			Instrument:           defaultInstrument,
			WeekdayToleranceMins: defaultWeekdayToleranceMins,
			MaxDeltaHours:        defaultMaxDeltaHours,
		},
		Workflow: Workflow{
			SpeechTimeoutSeconds: defaultSpeechTimeoutSeconds,
			SpeechRetryCount:     defaultSpeechRetryCount,
			EvictPollSeconds:     defaultEvictPollSeconds,
			EvictMaxWaitSeconds:  defaultEvictMaxWaitSeconds,
			QueueCapacity:        defaultQueueCapacity,
			FileScanSeconds:      defaultFileScanSeconds,
			MinTalkSeconds:       defaultMinTalkSeconds,
			MaxTalkSeconds:       defaultMaxTalkSeconds,
			TalkAttackSeconds:    defaultTalkAttackSeconds,
			TalkReleaseSeconds:   defaultTalkReleaseSeconds,
			SilenceThresholdDBFS: defaultSilenceThresholdDBFS,
			SilenceMinDurSeconds: defaultSilenceMinDurSeconds,
		},
		Par2: Par2{
			NumVolumes:        defaultPar2NumVolumes,
			RedundancyPercent: defaultPar2RedundancyPercent,
			BaseBlockSize:     defaultPar2BaseBlockSize,
			MaxNumBlocks:      defaultPar2MaxNumBlocks,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Tools: Tools{
			FlacBinary:    defaultFlacBinary,
			Par2Binary:    defaultPar2Binary,
			Xdelta3Binary: defaultXdelta3Binary,
			SpeechBinary:  defaultSpeechBinary,
			FfmpegBinary:  defaultFfmpegBinary,
			FfprobeBinary: defaultFfprobeBinary,
		},
		SourceModification: true,
	}
}
