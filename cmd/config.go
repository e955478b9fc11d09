package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "pcmark"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	inputFlagName          = "input"
	outputFlagName         = "output"
	structureFlagName      = "structure"
	excludeFlagName        = "exclude"
	extensionsFlagName     = "ext"
	formatConfigFlagName   = "format-config"
	formatCommandFlagName  = "format-command"
	runParallelFlagName    = "parallel"
	failFastFlagName       = "fail-fast"
	reuseStructureFlagName = "reuse-structure"
	verboseFlagName        = "verbose"
	logFileFlagName        = "log-file"

	inputConfigKey         = "paths.input"
	outputConfigKey        = "paths.output"
	structureConfigKey     = "paths.structure"
	excludeConfigKey       = "paths.exclude"
	extensionsConfigKey    = "scan.extensions"
	formatConfigKey        = "format.config"
	formatCommandKey       = "format.command"
	formatTimeoutKey       = "format.timeout"
	runParallelConfigKey   = "run.parallel"
	runFailFastConfigKey   = "run.fail_fast"
	analysisCacheConfigKey = "scan.cache_size"

	defaultInput         = "."
	defaultOutputSuffix  = "_new"
	defaultStructure     = "structure.json"
	defaultFormatConfig  = ".prettierrc"
	defaultFormatTimeout = 30 * time.Second
	defaultRunParallel   = 0
	defaultFailFast      = false
	defaultCacheSize     = 1024

	envPrefix = "PCMARK"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".pcmark.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var defaultExtensions = []string{".js", ".jsx"}

var globalLogger *slog.Logger

func init() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(inputConfigKey, defaultInput)
	viper.SetDefault(outputConfigKey, "")
	viper.SetDefault(structureConfigKey, defaultStructure)
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(extensionsConfigKey, defaultExtensions)
	viper.SetDefault(analysisCacheConfigKey, defaultCacheSize)
	viper.SetDefault(formatConfigKey, defaultFormatConfig)
	viper.SetDefault(formatCommandKey, "")
	viper.SetDefault(formatTimeoutKey, int64(defaultFormatTimeout.Seconds()))
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(runFailFastConfigKey, defaultFailFast)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// outputFor returns the configured output directory, or the input directory
// with a "_new" suffix.
func outputFor(input, output string) string {
	if strings.TrimSpace(output) != "" {
		return output
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		abs = filepath.Clean(input)
	}

	return abs + defaultOutputSuffix
}

func formatTimeout() time.Duration {
	seconds := viper.GetInt64(formatTimeoutKey)
	if seconds <= 0 {
		return defaultFormatTimeout
	}

	return time.Duration(seconds) * time.Second
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
