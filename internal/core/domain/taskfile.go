package domain

// Taskfile is a loaded task definition file.
type Taskfile struct {
	// Path is the absolute path of the file.
	Path string
	// Dir is the directory containing the file. Relative paths resolve against it.
	Dir string
	// Env holds process defaults, applied only where a variable is unset.
	Env map[string]string
	// Registry holds the tasks in file order.
	Registry *Registry
}

// TaskfileNames are the file names searched for when no taskfile is given, in order.
var TaskfileNames = []string{"rbuild.yaml", "rbuild.yml"}

// TaskfileVersion is the schema version understood by the loader.
const TaskfileVersion = "1"
