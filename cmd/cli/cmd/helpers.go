package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/hashlife/internal/engine"
	"github.com/hashlife/internal/rule/factory"
	"github.com/hashlife/pkg/compression"
)

// newEngine builds an engine with the configured limits, installing the
// given rule (or the default rule when empty).
func newEngine(ruleStr string) (*engine.Engine, error) {
	plugin := factory.Default(hostcb)
	if ruleStr != "" {
		var err error
		plugin, err = factory.ForRuleString(ruleStr, hostcb)
		if err != nil {
			return nil, err
		}
	}
	opts := []engine.Option{
		engine.WithHost(hostcb),
		engine.WithLogger(logger),
		engine.WithMaxMemory(cfg.Engine.MaxMemoryMB),
		engine.WithVerbose(cfg.Engine.Verbose || verbose),
	}
	return engine.New(plugin, opts...), nil
}

// loadPatternFile reads a macrocell file (gzipped or plain) into the engine.
func loadPatternFile(e *engine.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if compression.DetectType(data) != compression.TypeNone {
		data, err = compression.AutoDecompress(data)
		if err != nil {
			return fmt.Errorf("failed to decompress %s: %w", path, err)
		}
	}
	if err := e.ReadMacrocell(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writePatternFile serializes the engine to path, optionally gzipped.
func writePatternFile(e *engine.Engine, path, comments string, gzipped bool) error {
	var buf bytes.Buffer
	if err := e.WriteMacrocell(&buf, comments); err != nil {
		return fmt.Errorf("failed to serialize pattern: %w", err)
	}
	data := buf.Bytes()
	if gzipped {
		var err error
		data, err = compression.NewGzipCompressor(compression.LevelDefault).Compress(data)
		if err != nil {
			return fmt.Errorf("failed to compress pattern: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
