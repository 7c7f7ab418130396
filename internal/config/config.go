package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the source medium, destination library, and progress
// scratch locations.
type Paths struct {
	SourceDir         string `toml:"source_dir"`
	DestDir           string `toml:"dest_dir"`
	ProgressParentDir string `toml:"progress_parent_dir"`
	LogDir            string `toml:"log_dir"`
}

// Naming controls how filenames are guessed and validated.
type Naming struct {
	Prefix               string `toml:"prefix"`
	Instrument           string `toml:"instrument"`
	WeekdayToleranceMins int    `toml:"weekday_tolerance_minutes"`
	MaxDeltaHours        int    `toml:"max_delta_hours"`
}

// Workflow controls pipeline timing and queue capacity.
type Workflow struct {
	SpeechTimeoutSeconds int `toml:"speech_timeout_seconds"`
	SpeechRetryCount     int `toml:"speech_retry_count"`
	EvictPollSeconds     int `toml:"evict_poll_seconds"`
	EvictMaxWaitSeconds  int `toml:"evict_max_wait_seconds"`
	QueueCapacity        int `toml:"queue_capacity"`
	FileScanSeconds      int `toml:"file_scan_seconds"`
	MinTalkSeconds       float64 `toml:"min_talk_seconds"`
	MaxTalkSeconds       float64 `toml:"max_talk_seconds"`
	TalkAttackSeconds    float64 `toml:"talk_attack_seconds"`
	TalkReleaseSeconds   float64 `toml:"talk_release_seconds"`
	SilenceThresholdDBFS float64 `toml:"silence_threshold_dbfs"`
	SilenceMinDurSeconds float64 `toml:"silence_min_duration_seconds"`
}

// Par2 controls parity volume generation.
type Par2 struct {
	NumVolumes        int `toml:"num_volumes"`
	RedundancyPercent int `toml:"redundancy_percent"`
	BaseBlockSize     int `toml:"base_block_size"`
	MaxNumBlocks      int `toml:"max_num_blocks"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Tools overrides the executable names of the external collaborators.
type Tools struct {
	FlacBinary    string `toml:"flac_binary"`
	Par2Binary    string `toml:"par2_binary"`
	Xdelta3Binary string `toml:"xdelta3_binary"`
	SpeechBinary  string `toml:"speech_binary"`
	FfmpegBinary  string `toml:"ffmpeg_binary"`
	FfprobeBinary string `toml:"ffprobe_binary"`
}

// Config encapsulates all configuration values for taketake.
//
// Sections:
//   - Paths: source medium, destination library, progress, and log dirs
//   - Naming: filename prefix/instrument and prompt validation tolerances
//   - Workflow: speech recognition, cache eviction, and queue timing
//   - Par2: parity volume generation parameters
//   - Logging: log format and level
//   - Tools: external binary overrides
//   - SourceModification: whether cleanup is allowed to delete the source
type Config struct {
	Paths               Paths    `toml:"paths"`
	Naming              Naming   `toml:"naming"`
	Workflow            Workflow `toml:"workflow"`
	Par2                Par2     `toml:"par2"`
	Logging             Logging  `toml:"logging"`
	Tools               Tools    `toml:"tools"`
	SourceModification  bool     `toml:"source_modification"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/taketake/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("taketake.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	defaultPath, err := expandPath("~/.config/taketake/config.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and progress-parent directories this
// config points at, if they do not already exist.
func (c *Config) EnsureDirectories() error {
	if c.Paths.LogDir != "" {
		if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Paths.LogDir, err)
		}
	}
	if c.Paths.ProgressParentDir != "" {
		if err := os.MkdirAll(c.Paths.ProgressParentDir, 0o755); err != nil {
			return fmt.Errorf("create progress parent directory %q: %w", c.Paths.ProgressParentDir, err)
		}
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
