package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validatePar2(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateNaming() error {
	if c.Naming.Prefix == "" {
		return errors.New("naming.prefix must be set")
	}
	if c.Naming.MaxDeltaHours <= 0 {
		return errors.New("naming.max_delta_hours must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.SpeechTimeoutSeconds <= 0 {
		return errors.New("workflow.speech_timeout_seconds must be positive")
	}
	if c.Workflow.EvictMaxWaitSeconds <= 0 {
		return errors.New("workflow.evict_max_wait_seconds must be positive")
	}
	if c.Workflow.QueueCapacity <= 0 {
		return errors.New("workflow.queue_capacity must be positive")
	}
	if c.Workflow.MaxTalkSeconds < c.Workflow.MinTalkSeconds {
		return errors.New("workflow.max_talk_seconds must be >= workflow.min_talk_seconds")
	}
	return nil
}

func (c *Config) validatePar2() error {
	if c.Par2.NumVolumes < 1 {
		return errors.New("par2.num_volumes must be at least 1")
	}
	if c.Par2.RedundancyPercent < 1 || c.Par2.RedundancyPercent > 100 {
		return errors.New("par2.redundancy_percent must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
