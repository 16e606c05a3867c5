package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// CommandBuilder helps create standardized subcommands
type CommandBuilder struct {
	Use          string
	Short        string
	Long         string
	MaxArgs      int
	ExampleUsage []string
}

// BuildCommand creates a cobra command with common patterns
func (cb *CommandBuilder) BuildCommand(runFunc func(cobraCmd *cobra.Command, args []string) error) *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:          cb.Use,
		Short:        cb.Short,
		Long:         cb.Long,
		Args:         cobra.MaximumNArgs(cb.MaxArgs),
		SilenceUsage: true,
		RunE:         runFunc,
	}

	if len(cb.ExampleUsage) > 0 {
		var examples strings.Builder
		examples.WriteString("\n\nExamples:\n")
		for _, example := range cb.ExampleUsage {
			examples.WriteString("  " + example + "\n")
		}
		cobraCmd.Long += examples.String()
	}

	return cobraCmd
}
