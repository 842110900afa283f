// Package config loads evaluator settings from YAML or legacy TinyMUSH
// .conf files.
package config

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crystal-mush/softcode/pkg/eval"
)

// EvalConf holds the evaluator's configuration parameters.
// Supports both YAML (.yaml/.yml) and legacy TinyMUSH text (.conf) formats.
type EvalConf struct {
	// --- Limits ---
	FunctionNestLimit       int `yaml:"function_nest_limit"`       // Max nested function calls
	FunctionInvocationLimit int `yaml:"function_invocation_limit"` // Max calls per command
	OutputLimit             int `yaml:"output_limit"`              // Bytes per evaluation buffer

	// --- Parsing ---
	SpaceCompress bool `yaml:"space_compress"`
	AnsiColors    bool `yaml:"ansi_colors"`

	// --- Tracing ---
	TraceTopdown     bool `yaml:"trace_topdown"`
	TraceOutputLimit int  `yaml:"trace_output_limit"`

	// --- Database ---
	Database string `yaml:"database"` // bbolt file
	GodDBRef int    `yaml:"god_dbref"`

	// --- SQL ---
	SQLEnabled    bool   `yaml:"sql_enabled"`
	SQLDriver     string `yaml:"sql_driver"`      // "sqlite" or "mysql"
	SQLDatabase   string `yaml:"sql_database"`    // SQLite3 file or MySQL DSN
	SQLQueryLimit int    `yaml:"sql_query_limit"` // Max rows returned
	SQLTimeout    int    `yaml:"sql_timeout"`     // Query timeout in seconds
	SQLReconnect  bool   `yaml:"sql_reconnect"`   // Auto-reconnect on failure

	// --- Diagnostics ---
	Debug       bool   `yaml:"debug"`
	MetricsAddr string `yaml:"metrics_addr"` // e.g. ":9100"; empty disables
}

// Default returns an EvalConf with TinyMUSH defaults.
func Default() *EvalConf {
	return &EvalConf{
		FunctionNestLimit:       eval.DefaultFuncNestLim,
		FunctionInvocationLimit: eval.DefaultFuncInvkLim,
		OutputLimit:             eval.LBufSize,
		SpaceCompress:           true,
		AnsiColors:              true,
		TraceTopdown:            true,
		TraceOutputLimit:        200,
		GodDBRef:                1,
		SQLDriver:               "sqlite",
		SQLQueryLimit:           100,
		SQLTimeout:              5,
		SQLReconnect:            true,
	}
}

// Load reads a config file, choosing the format by extension.
func Load(path string) (*EvalConf, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return loadLegacy(path)
	}
}

// Apply pushes the configuration into an evaluation context.
func (c *EvalConf) Apply(ctx *eval.EvalContext) {
	ctx.FuncNestLim = c.FunctionNestLimit
	ctx.FuncInvkLim = c.FunctionInvocationLimit
	ctx.OutputLimit = c.OutputLimit
	ctx.SpaceCompress = c.SpaceCompress
	ctx.AnsiColors = c.AnsiColors
	if ctx.Trace == nil {
		ctx.Trace = eval.NewTraceCache(c.TraceTopdown, c.TraceOutputLimit)
	} else {
		ctx.Trace.TopDown = c.TraceTopdown
		ctx.Trace.Limit = c.TraceOutputLimit
	}
	SetDebug(c.Debug)
	DebugLog("config: applied nest=%d invk=%d output=%d compress=%v trace_topdown=%v",
		c.FunctionNestLimit, c.FunctionInvocationLimit, c.OutputLimit, c.SpaceCompress, c.TraceTopdown)
}

// --- YAML loader ---

func loadYAML(path string) (*EvalConf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parsing YAML %s: %w", path, err)
	}
	c.resolvePaths(filepath.Dir(path))
	return c, nil
}

// --- Legacy TinyMUSH text loader ---

func loadLegacy(path string) (*EvalConf, error) {
	c := Default()
	if err := c.loadLegacyFile(path, 0); err != nil {
		return nil, err
	}
	c.resolvePaths(filepath.Dir(path))
	return c, nil
}

func (c *EvalConf) loadLegacyFile(path string, depth int) error {
	if depth > 10 {
		return fmt.Errorf("config: include depth exceeded (circular include?)")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	baseDir := filepath.Dir(path)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '@' {
			continue
		}

		// Split on first whitespace (space or tab)
		key, val := splitKeyVal(line)
		if key == "" {
			continue
		}

		switch strings.ToLower(key) {
		case "include":
			includePath := val
			if !filepath.IsAbs(includePath) {
				includePath = filepath.Join(baseDir, includePath)
			}
			if err := c.loadLegacyFile(includePath, depth+1); err != nil {
				log.Printf("config: warning: include %s: %v", val, err)
			}

		case "function_recursion_limit", "function_nest_limit":
			c.FunctionNestLimit = atoi(val, c.FunctionNestLimit)
		case "function_invocation_limit":
			c.FunctionInvocationLimit = atoi(val, c.FunctionInvocationLimit)
		case "output_limit":
			c.OutputLimit = atoi(val, c.OutputLimit)
		case "space_compress":
			c.SpaceCompress = parseBool(val)
		case "ansi_colors":
			c.AnsiColors = parseBool(val)
		case "trace_topdown":
			c.TraceTopdown = parseBool(val)
		case "trace_output_limit":
			c.TraceOutputLimit = atoi(val, c.TraceOutputLimit)
		case "database":
			c.Database = val
		case "god_dbref":
			c.GodDBRef = atoi(val, c.GodDBRef)
		case "sql_enabled":
			c.SQLEnabled = parseBool(val)
		case "sql_driver":
			c.SQLDriver = strings.ToLower(val)
		case "sql_database":
			c.SQLDatabase = val
		case "sql_query_limit":
			c.SQLQueryLimit = atoi(val, c.SQLQueryLimit)
		case "sql_timeout":
			c.SQLTimeout = atoi(val, c.SQLTimeout)
		case "sql_reconnect":
			c.SQLReconnect = parseBool(val)
		case "debug":
			c.Debug = parseBool(val)
		case "metrics_addr":
			c.MetricsAddr = val

		default:
			// Unknown directives silently ignored for forward compatibility
		}
	}
	return scanner.Err()
}

// resolvePaths makes file paths relative to the config file's directory.
func (c *EvalConf) resolvePaths(baseDir string) {
	paths := []*string{&c.Database}
	if c.SQLDriver == "" || c.SQLDriver == "sqlite" {
		paths = append(paths, &c.SQLDatabase)
	}
	for _, p := range paths {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
}

// splitKeyVal splits a line on the first whitespace (space or tab).
func splitKeyVal(line string) (string, string) {
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' || line[i] == '\t' {
			return line[:i], strings.TrimSpace(line[i+1:])
		}
	}
	return line, ""
}

func atoi(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "yes" || s == "true" || s == "1" || s == "on"
}
