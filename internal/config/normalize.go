package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNaming()
	c.normalizeWorkflow()
	c.normalizePar2()
	c.normalizeLogging()
	c.normalizeTools()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SourceDir) != "" {
		if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
			return fmt.Errorf("paths.source_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.DestDir) != "" {
		if c.Paths.DestDir, err = expandPath(c.Paths.DestDir); err != nil {
			return fmt.Errorf("paths.dest_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.ProgressParentDir) == "" {
		c.Paths.ProgressParentDir = defaultProgressParentDir
	}
	if c.Paths.ProgressParentDir, err = expandPath(c.Paths.ProgressParentDir); err != nil {
		return fmt.Errorf("paths.progress_parent_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNaming() {
	if strings.TrimSpace(c.Naming.Prefix) == "" {
		c.Naming.Prefix = defaultPrefix
	}
	if strings.TrimSpace(c.Naming.Instrument) == "" {
		c.Naming.Instrument = defaultInstrument
	}
	if c.Naming.MaxDeltaHours <= 0 {
		c.Naming.MaxDeltaHours = defaultMaxDeltaHours
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.SpeechTimeoutSeconds <= 0 {
		c.Workflow.SpeechTimeoutSeconds = defaultSpeechTimeoutSeconds
	}
	if c.Workflow.SpeechRetryCount <= 0 {
		c.Workflow.SpeechRetryCount = defaultSpeechRetryCount
	}
	if c.Workflow.EvictPollSeconds <= 0 {
		c.Workflow.EvictPollSeconds = defaultEvictPollSeconds
	}
	if c.Workflow.EvictMaxWaitSeconds <= 0 {
		c.Workflow.EvictMaxWaitSeconds = defaultEvictMaxWaitSeconds
	}
	if c.Workflow.QueueCapacity <= 0 {
		c.Workflow.QueueCapacity = defaultQueueCapacity
	}
	if c.Workflow.FileScanSeconds <= 0 {
		c.Workflow.FileScanSeconds = defaultFileScanSeconds
	}
	if c.Workflow.MinTalkSeconds <= 0 {
		c.Workflow.MinTalkSeconds = defaultMinTalkSeconds
	}
	if c.Workflow.MaxTalkSeconds <= 0 {
		c.Workflow.MaxTalkSeconds = defaultMaxTalkSeconds
	}
	if c.Workflow.TalkAttackSeconds < 0 {
		c.Workflow.TalkAttackSeconds = defaultTalkAttackSeconds
	}
	if c.Workflow.TalkReleaseSeconds < 0 {
		c.Workflow.TalkReleaseSeconds = defaultTalkReleaseSeconds
	}
	if c.Workflow.SilenceThresholdDBFS == 0 {
		c.Workflow.SilenceThresholdDBFS = defaultSilenceThresholdDBFS
	}
	if c.Workflow.SilenceMinDurSeconds <= 0 {
		c.Workflow.SilenceMinDurSeconds = defaultSilenceMinDurSeconds
	}
}

func (c *Config) normalizePar2() {
	if c.Par2.NumVolumes <= 0 {
		c.Par2.NumVolumes = defaultPar2NumVolumes
	}
	if c.Par2.RedundancyPercent <= 0 {
		c.Par2.RedundancyPercent = defaultPar2RedundancyPercent
	}
	if c.Par2.BaseBlockSize <= 0 {
		c.Par2.BaseBlockSize = defaultPar2BaseBlockSize
	}
	if c.Par2.MaxNumBlocks <= 0 {
		c.Par2.MaxNumBlocks = defaultPar2MaxNumBlocks
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.FlacBinary) == "" {
		c.Tools.FlacBinary = defaultFlacBinary
	}
	if strings.TrimSpace(c.Tools.Par2Binary) == "" {
		c.Tools.Par2Binary = defaultPar2Binary
	}
	if strings.TrimSpace(c.Tools.Xdelta3Binary) == "" {
		c.Tools.Xdelta3Binary = defaultXdelta3Binary
	}
	if strings.TrimSpace(c.Tools.SpeechBinary) == "" {
		c.Tools.SpeechBinary = defaultSpeechBinary
	}
	if strings.TrimSpace(c.Tools.FfmpegBinary) == "" {
		c.Tools.FfmpegBinary = defaultFfmpegBinary
	}
	if strings.TrimSpace(c.Tools.FfprobeBinary) == "" {
		c.Tools.FfprobeBinary = defaultFfprobeBinary
	}
}
