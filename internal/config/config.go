// Package config loads application settings from flags, environment and an
// optional config file
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bethropolis/ignorewalk/internal/logger"
)

// EnvPrefix prefixes environment overrides, e.g. IGNOREWALK_MAX_DEPTH=2.
const EnvPrefix = "IGNOREWALK"

// Config holds all application configuration settings
type Config struct {
	Roots []string

	// Logging settings
	Verbose     bool
	Quiet       bool
	LogLevel    logger.LogLevel
	NoColor     bool
	UseColors   bool
	OutputFile  string
	ShowSkipped bool

	// Walk settings
	Hidden         bool
	Ignore         bool
	GitIgnore      bool
	GitGlobal      bool
	GitExclude     bool
	Parents        bool
	RequireGit     bool
	FollowLinks    bool
	SameFileSystem bool
	MaxDepth       int

	// Filtering settings
	Globs           []string
	Extensions      []string
	IgnoreFileNames []string
	IgnoreFiles     []string
	FilesOnly       bool

	// Dump settings
	Dump          bool
	Concurrent    bool
	MaxWorkers    int
	MaxFileSizeMB int64
	Timeout       time.Duration

	// Output format
	JSONOutput     bool
	MarkdownOutput bool

	// ConfigFile is the file settings were read from, if any
	ConfigFile string
}

// RegisterFlags defines every setting on fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Read settings from this file (default ./.ignorewalk.yaml)")

	fs.BoolP("verbose", "v", false, "Enable verbose logging (same as --log-level=debug)")
	fs.BoolP("quiet", "q", false, "Suppress INFO messages (only show WARN, ERROR)")
	fs.String("log-level", "info", "Set the logging level (debug, info, warn, error, none)")
	fs.Bool("no-color", false, "Disable color output")
	fs.StringP("output", "o", "", "Output to file instead of stdout")
	fs.Bool("show-skipped", false, "Show a list of skipped files/directories and reasons at the end")

	fs.Bool("hidden", true, "Skip hidden files/directories (starting with '.')")
	fs.Bool("ignore", true, "Read .ignore files")
	fs.Bool("git-ignore", true, "Read .gitignore files")
	fs.Bool("git-global", true, "Read the global git excludes file (core.excludesFile)")
	fs.Bool("git-exclude", true, "Read .git/info/exclude")
	fs.Bool("parents", true, "Read ignore files in the parent directories of each root")
	fs.Bool("require-git", true, "Only apply git ignore sources inside a git repository")
	fs.BoolP("follow", "L", false, "Follow symbolic links")
	fs.Bool("same-file-system", false, "Do not descend into other filesystems")
	fs.IntP("max-depth", "d", -1, "Maximum depth to descend (negative = unlimited)")

	fs.StringSliceP("glob", "g", nil, "Override glob (gitignore syntax, '!' to exclude); repeatable")
	fs.StringSlice("ext", nil, "Only include files with these extensions (comma-separated, e.g., 'go,md,txt')")
	fs.StringSlice("ignore-file-name", nil, "Extra ignore file name read in every directory; repeatable")
	fs.StringSlice("ignore-file", nil, "Extra ignore file applied to the whole walk; repeatable")
	fs.Bool("files-only", false, "List files only, not directories")

	fs.Bool("dump", false, "Print the contents of every walked file")
	fs.Bool("concurrent", false, "Read files concurrently in --dump mode")
	fs.Int("workers", runtime.NumCPU(), "Max number of concurrent readers (defaults to number of CPU cores)")
	fs.Int64("max-size", 0, "Max file size to dump in MB (0 = no limit)")
	fs.Duration("timeout", 0, "Maximum execution time (e.g., '30s', '5m')")

	fs.Bool("json", false, "Output results in JSON format")
	fs.Bool("markdown", false, "Output results in Markdown format")
}

// Load resolves settings with the precedence flag > environment > config
// file > default. args are the walk roots; none means ".".
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: binding flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".ignorewalk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	c := &Config{
		Roots:      args,
		ConfigFile: v.ConfigFileUsed(),

		Verbose:     v.GetBool("verbose"),
		Quiet:       v.GetBool("quiet"),
		NoColor:     v.GetBool("no-color"),
		OutputFile:  v.GetString("output"),
		ShowSkipped: v.GetBool("show-skipped"),

		Hidden:         v.GetBool("hidden"),
		Ignore:         v.GetBool("ignore"),
		GitIgnore:      v.GetBool("git-ignore"),
		GitGlobal:      v.GetBool("git-global"),
		GitExclude:     v.GetBool("git-exclude"),
		Parents:        v.GetBool("parents"),
		RequireGit:     v.GetBool("require-git"),
		FollowLinks:    v.GetBool("follow"),
		SameFileSystem: v.GetBool("same-file-system"),
		MaxDepth:       v.GetInt("max-depth"),

		Globs:           v.GetStringSlice("glob"),
		Extensions:      cleanExtensions(v.GetStringSlice("ext")),
		IgnoreFileNames: v.GetStringSlice("ignore-file-name"),
		IgnoreFiles:     v.GetStringSlice("ignore-file"),
		FilesOnly:       v.GetBool("files-only"),

		Dump:          v.GetBool("dump"),
		Concurrent:    v.GetBool("concurrent"),
		MaxWorkers:    v.GetInt("workers"),
		MaxFileSizeMB: v.GetInt64("max-size"),
		Timeout:       v.GetDuration("timeout"),

		JSONOutput:     v.GetBool("json"),
		MarkdownOutput: v.GetBool("markdown"),
	}
	if len(c.Roots) == 0 {
		c.Roots = []string{"."}
	}

	level, err := logger.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch {
	case c.Verbose:
		level = logger.LevelDebug
	case c.Quiet && level < logger.LevelWarn:
		level = logger.LevelWarn
	}
	c.LogLevel = level

	if c.JSONOutput && c.MarkdownOutput {
		return nil, errors.New("config: --json and --markdown are mutually exclusive")
	}
	if c.MaxWorkers < 1 {
		c.MaxWorkers = 1
	}

	// Determine if colors should be used
	c.UseColors = !c.NoColor && isatty.IsTerminal(os.Stderr.Fd()) && c.OutputFile == ""

	return c, nil
}

// cleanExtensions lower-cases extensions and strips leading dots.
func cleanExtensions(exts []string) []string {
	var out []string
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}
