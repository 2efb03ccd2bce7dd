package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/gridvm/internal/ctxlog"
	"github.com/specialistvlad/gridvm/internal/fsutil"
	"github.com/specialistvlad/gridvm/internal/program"
)

// Loader implements program.Loader for HCL program files.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load finds and parses all .hcl files under path into a validated
// program. Files are processed in sorted path order, so a program split
// across files always aggregates the same way.
func (l *Loader) Load(ctx context.Context, path string) (*program.Program, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading program from path.", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find program files in %s: %w", path, err)
	}

	prog := program.New()
	if len(files) == 0 {
		logger.Warn("No .hcl program files found in path, returning empty program.", "path", path)
		return prog, nil
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		part, err := l.loadFile(file, parser)
		if err != nil {
			return nil, err
		}
		prog.Merge(part)
	}

	if err := prog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program at %s: %w", path, err)
	}

	logger.Info("Program loaded successfully.", "files", len(files), "operators", len(prog.Operators))
	return prog, nil
}

// loadFile parses a single HCL file and translates it into a partial
// program.
func (l *Loader) loadFile(filePath string, parser *hclparse.Parser) (*program.Program, error) {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}

	var parsed fileSchema
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
	}

	part, err := l.translate(&parsed)
	if err != nil {
		return nil, fmt.Errorf("error in file %s: %w", filePath, err)
	}
	return part, nil
}

// translate converts the HCL-specific file schema into the agnostic
// program model.
func (l *Loader) translate(parsed *fileSchema) (*program.Program, error) {
	part := program.New()

	for _, ob := range parsed.Operators {
		op := &program.Operator{
			Kind:      ob.Kind,
			Name:      ob.Name,
			DependsOn: ob.DependsOn,
		}
		if ob.Priority != nil {
			op.Priority = *ob.Priority
		}
		if ob.Arguments != nil {
			args, err := attrsToMap(ob.Arguments.Body)
			if err != nil {
				return nil, fmt.Errorf("operator %q: %w", ob.Name, err)
			}
			op.Arguments = args
		}
		if ob.Rate != nil {
			op.Rate = &program.Rate{Burst: ob.Rate.Burst, Refill: ob.Rate.Refill}
		}
		part.Operators = append(part.Operators, op)
	}

	for _, zb := range parsed.Zones {
		part.Zones = append(part.Zones, &program.Zone{
			Name:    zb.Name,
			Members: zb.Members,
			Policy:  zb.Policy,
		})
	}

	for _, lb := range parsed.Limits {
		part.Limits = append(part.Limits, &program.Limit{
			Key: lb.Key,
			Min: lb.Min,
			Max: lb.Max,
		})
	}

	if parsed.VM != nil {
		part.Settings = program.Settings{
			CheckpointEvery: parsed.VM.CheckpointEvery,
			Retention:       parsed.VM.Retention,
			FullEvery:       parsed.VM.FullEvery,
		}
	}

	if parsed.State != nil {
		vars, err := attrsToMap(parsed.State.Body)
		if err != nil {
			return nil, fmt.Errorf("state block: %w", err)
		}
		for k, v := range vars {
			part.State[k] = v
		}
	}

	if parsed.Goal != nil {
		vars, err := attrsToMap(parsed.Goal.Body)
		if err != nil {
			return nil, fmt.Errorf("goal block: %w", err)
		}
		for k, v := range vars {
			part.Goal[k] = v
		}
	}

	return part, nil
}
