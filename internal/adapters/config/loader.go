// Package config loads rbuild.yaml taskfiles into a task registry.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/rbuild/internal/core/domain"
	"go.trai.ch/rbuild/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader for YAML taskfiles.
type Loader struct {
	Logger ports.Logger
	// Shell runs plain command lines, e.g. ["sh", "-c"].
	Shell []string
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger, shell []string) *Loader {
	return &Loader{Logger: logger, Shell: shell}
}

// Discover walks up from cwd and returns the first taskfile found.
func (l *Loader) Discover(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigNotFound.Error()), "cwd", cwd)
	}

	currentDir := abs
	for {
		for _, name := range domain.TaskfileNames {
			candidate := filepath.Join(currentDir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no taskfile in this directory or any parent"), "cwd", abs)
}

// Load parses the taskfile at path.
func (l *Loader) Load(path string) (*domain.Taskfile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	data, err := os.ReadFile(abs) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", abs)
	}

	var file Taskfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", abs)
	}

	if file.Version != "" && file.Version != domain.TaskfileVersion {
		l.Logger.Warn(fmt.Sprintf("unsupported taskfile version %q in %s, reading it as version %s",
			file.Version, abs, domain.TaskfileVersion))
	}

	dir := filepath.Dir(abs)
	registry, err := l.buildRegistry(&file, dir)
	if err != nil {
		return nil, zerr.With(err, "path", abs)
	}
	registry.SetDefault(file.Default)

	return &domain.Taskfile{
		Path:     abs,
		Dir:      dir,
		Env:      file.Env,
		Registry: registry,
	}, nil
}

func (l *Loader) buildRegistry(file *Taskfile, dir string) (*domain.Registry, error) {
	registry := domain.NewRegistry()

	if file.Tasks.Kind == 0 {
		return registry, nil
	}
	if file.Tasks.Kind != yaml.MappingNode {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "tasks must be a mapping"), "line", file.Tasks.Line)
	}

	content := file.Tasks.Content
	for i := 0; i+1 < len(content); i += 2 {
		keyNode, valueNode := content[i], content[i+1]
		name := keyNode.Value

		var dto TaskDTO
		if err := valueNode.Decode(&dto); err != nil {
			err = zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
			return nil, zerr.With(zerr.With(err, "task", name), "line", valueNode.Line)
		}

		task, err := l.buildTask(name, &dto, dir)
		if err != nil {
			return nil, err
		}

		if err := registry.Register(task); err != nil {
			return nil, zerr.With(err, "line", keyNode.Line)
		}
	}

	return registry, nil
}

func (l *Loader) buildTask(name string, dto *TaskDTO, dir string) (*domain.Task, error) {
	description := dto.Describe
	if description == "" {
		description = dto.Description
	}

	deps := make([]string, 0, len(dto.Deps)+len(dto.DependsOn))
	deps = append(deps, dto.Deps...)
	deps = append(deps, dto.DependsOn...)

	commands := make([]domain.Command, 0, len(dto.Cmds))
	for i := range dto.Cmds {
		cmd, err := l.buildCommand(&dto.Cmds[i])
		if err != nil {
			return nil, zerr.With(zerr.With(err, "task", name), "index", i)
		}
		commands = append(commands, cmd)
	}

	return &domain.Task{
		Name:         name,
		Description:  description,
		Dependencies: deps,
		Commands:     commands,
		Environment:  dto.Env,
		BaseDir:      domain.Command{Dir: dto.Dir}.ResolveDir(dir),
	}, nil
}

func (l *Loader) buildCommand(dto *CommandDTO) (domain.Command, error) {
	switch {
	case dto.Line != "":
		return domain.NewShellCommand(l.Shell, dto.Line), nil

	case dto.Run != "" && dto.Bump != "":
		return domain.Command{}, zerr.Wrap(domain.ErrInvalidCommand, "'run' and 'bump' are mutually exclusive")

	case dto.Run != "":
		return domain.Command{
			Program:     dto.Run,
			Args:        dto.Args,
			Dir:         dto.Dir,
			Environment: dto.Env,
			TTY:         dto.TTY,
		}, nil

	case dto.Bump != "":
		if len(dto.Args) > 0 || len(dto.Env) > 0 {
			return domain.Command{}, zerr.Wrap(domain.ErrInvalidCommand, "'bump' takes no args or env")
		}
		part, err := domain.ParseVersionPart(dto.Part)
		if err != nil {
			return domain.Command{}, err
		}
		return domain.Command{
			Dir:  dto.Dir,
			Bump: &domain.BumpSpec{File: dto.Bump, Part: part},
		}, nil

	default:
		return domain.Command{}, zerr.Wrap(domain.ErrInvalidCommand, "expected a command line, 'run' or 'bump'")
	}
}
