package domain

import (
	"os"
	"slices"
	"strings"
)

// Env is an immutable set of environment variables.
// Every derived environment is a copy; the process environment is never modified.
type Env struct {
	vars map[string]string
}

// NewEnv builds an Env from KEY=VALUE entries, as returned by os.Environ.
// Entries without '=' are ignored and later duplicates win.
func NewEnv(entries []string) Env {
	vars := make(map[string]string, len(entries))
	for _, entry := range entries {
		k, v, ok := strings.Cut(entry, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	return Env{vars: vars}
}

// EnvFromMap builds an Env from a map.
func EnvFromMap(m map[string]string) Env {
	vars := make(map[string]string, len(m))
	for k, v := range m {
		vars[k] = v
	}
	return Env{vars: vars}
}

// Lookup returns the value of key and whether it is set.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Get returns the value of key, or an empty string.
func (e Env) Get(key string) string {
	return e.vars[key]
}

// Len returns the number of variables.
func (e Env) Len() int {
	return len(e.vars)
}

// Expand replaces $VAR and ${VAR} in s with values from e. "$$" yields a literal "$".
func (e Env) Expand(s string) string {
	return os.Expand(s, func(key string) string {
		if key == "$" {
			return "$"
		}
		return e.vars[key]
	})
}

// WithDefaults returns a copy of e where every variable of defaults that is not already
// set is added. Values are expanded against e.
func (e Env) WithDefaults(defaults map[string]string) Env {
	out := e.clone(len(defaults))
	for k, v := range defaults {
		if _, set := e.vars[k]; set {
			continue
		}
		out.vars[k] = e.Expand(v)
	}
	return out
}

// Overlay returns a copy of e with vars added or replaced. Values are expanded against e.
func (e Env) Overlay(vars map[string]string) Env {
	if len(vars) == 0 {
		return e
	}
	out := e.clone(len(vars))
	for k, v := range vars {
		out.vars[k] = e.Expand(v)
	}
	return out
}

// Environ returns the variables as sorted KEY=VALUE entries.
func (e Env) Environ() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e.vars[k])
	}
	return out
}

func (e Env) clone(extra int) Env {
	vars := make(map[string]string, len(e.vars)+extra)
	for k, v := range e.vars {
		vars[k] = v
	}
	return Env{vars: vars}
}
