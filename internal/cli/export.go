package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type HabitExportCmd struct {
	Format string `help:"Output format." default:"json" enum:"json,yaml"`
	Output string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (c *HabitExportCmd) Run(ctx *Context) error {
	if err := ctx.load(context.Background()); err != nil {
		return err
	}

	snapshot := ctx.Tracker.Snapshot()

	var data []byte
	var err error
	switch c.Format {
	case "yaml":
		data, err = yaml.Marshal(snapshot)
	default:
		data, err = json.MarshalIndent(snapshot, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	if c.Output == "" {
		_, err = ctx.out().Write(data)
		return err
	}

	if err := os.WriteFile(c.Output, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	ctx.printf("✓ Exported %d habits and %d completions to %s\n", len(snapshot.Habits), len(snapshot.Completions), c.Output)
	return nil
}
