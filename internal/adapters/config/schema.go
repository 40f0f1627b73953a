package config

import (
	"gopkg.in/yaml.v3"
)

// Taskfile represents the structure of the rbuild.yaml file.
type Taskfile struct {
	Version string `yaml:"version"`
	Default string `yaml:"default"`

	// Env values fill variables the process environment leaves unset.
	// $VAR and ${VAR} expand against that environment; $$ is a literal $.
	Env map[string]string `yaml:"env"`

	// Tasks is kept as a node so that file order is preserved.
	Tasks yaml.Node `yaml:"tasks"`
}

// TaskDTO represents a task definition.
// A task may also be written as a single command line or as a list of commands.
type TaskDTO struct {
	Describe    string   `yaml:"describe"`
	Description string   `yaml:"description"`
	Deps        []string `yaml:"deps"`
	DependsOn   []string `yaml:"dependsOn"`
	Dir         string   `yaml:"dir"`

	// Env values replace inherited variables and expand like the top-level env.
	Env  map[string]string `yaml:"env"`
	Cmds []CommandDTO      `yaml:"cmds"`
}

// UnmarshalYAML accepts the mapping form as well as the short forms.
func (t *TaskDTO) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		t.Cmds = []CommandDTO{{Line: node.Value}}
		return nil
	case yaml.SequenceNode:
		return node.Decode(&t.Cmds)
	default:
		type plain TaskDTO
		return node.Decode((*plain)(t))
	}
}

// CommandDTO represents one entry of a task's cmds list.
// A plain string is a shell line; a mapping is a structured command or a builtin.
type CommandDTO struct {
	Line string            `yaml:"-"`
	Run  string            `yaml:"run"`
	Args []string          `yaml:"args"`
	Dir  string            `yaml:"dir"`
	Env  map[string]string `yaml:"env"`
	TTY  bool              `yaml:"tty"`
	Bump string            `yaml:"bump"`
	Part string            `yaml:"part"`
}

// UnmarshalYAML accepts a plain string as a shell line.
func (c *CommandDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Line = node.Value
		return nil
	}
	type plain CommandDTO
	return node.Decode((*plain)(c))
}
