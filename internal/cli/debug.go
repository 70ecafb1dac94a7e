package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitflow/internal/models"
)

type DebugCmd struct {
	DBPath    DebugDBPathCmd    `cmd:"" help:"Show database path."`
	DumpHabit DebugDumpHabitCmd `cmd:"" help:"Dump a habit and its completions as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	return ctx.printJSON(map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpHabitCmd struct {
	Name string `arg:"" help:"Name or id of the habit to dump."`
}

type habitDump struct {
	Habit       models.Habit        `json:"habit"`
	Completions []models.Completion `json:"completions"`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *Context) error {
	if err := ctx.load(context.Background()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	habit, err := ctx.findHabit(cmd.Name)
	if err != nil {
		return err
	}

	dump := habitDump{Habit: habit, Completions: []models.Completion{}}
	for _, c := range ctx.Tracker.Completions() {
		if c.HabitID == habit.ID {
			dump.Completions = append(dump.Completions, c)
		}
	}
	return ctx.printJSON(dump)
}

func (c *Context) printJSON(v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	c.printf("%s\n", jsonBytes)
	return nil
}
