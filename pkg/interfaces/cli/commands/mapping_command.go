package commands

import (
	"context"
	"fmt"

	"github.com/vsinha/fcrecon/pkg/application/services/mapping"
	"github.com/vsinha/fcrecon/pkg/interfaces/cli/output"
)

// MappingCommand resolves the OEM/project mapping tables
type MappingCommand struct {
	config Config
}

// NewMappingCommand creates a new mapping command with the given configuration
func NewMappingCommand(config Config) *MappingCommand {
	return &MappingCommand{config: config}
}

// Execute runs the mapping command. A mapping that cannot be loaded is fatal.
func (c *MappingCommand) Execute(ctx context.Context) error {
	settings := c.config.Settings
	if settings == nil || settings.Mapping.Primary == "" || settings.Mapping.Detail == "" {
		return fmt.Errorf("validation error: primary and detail mapping files are required")
	}

	rt, err := newRuntime(ctx, c.config)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := mapping.NewMappingService(rt.extracts, rt.memo, rt.eventStore, settings.Mapping.Units(), rt.logger)
	result, err := svc.Resolve(ctx, settings.Mapping.Primary, settings.Mapping.Detail)
	if err != nil {
		return err
	}

	return output.GenerateMapping(result, c.config.Material, output.Config{
		Format:    settings.Output.Format,
		OutputDir: settings.Output.Dir,
		Verbose:   c.config.Verbose,
		Out:       c.config.out(),
	})
}
