package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitflow/internal/constants"
)

// NewHabitForm builds the add habit dialog over fm.
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	if fm.Color == "" {
		fm.Color = constants.DefaultColor()
	}

	options := make([]huh.Option[string], 0, len(constants.Palette))
	for _, c := range constants.Palette {
		options = append(options, huh.NewOption(constants.PaletteNames[c], c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Description("Optional").
				Value(&fm.Description),
			huh.NewSelect[string]().
				Title("Color").
				Options(options...).
				Value(&fm.Color),
		),
	).WithTheme(huh.ThemeDracula())
}
