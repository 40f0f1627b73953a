package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rbuild/internal/core/domain"
	"go.trai.ch/zerr"
)

func newRegistry(t *testing.T, tasks ...*domain.Task) *domain.Registry {
	t.Helper()
	r := domain.NewRegistry()
	for _, task := range tasks {
		require.NoError(t, r.Register(task))
	}
	return r
}

func names(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}

func TestRegistry_Register(t *testing.T) {
	t.Run("rejects empty name", func(t *testing.T) {
		r := domain.NewRegistry()
		require.ErrorIs(t, r.Register(&domain.Task{}), domain.ErrEmptyTaskName)
		require.ErrorIs(t, r.Register(nil), domain.ErrEmptyTaskName)
		assert.Equal(t, 0, r.Len())
	})

	t.Run("last write wins and keeps position", func(t *testing.T) {
		r := newRegistry(t,
			&domain.Task{Name: "build", Description: "first"},
			&domain.Task{Name: "clean"},
			&domain.Task{Name: "build", Description: "second"},
		)

		assert.Equal(t, []string{"build", "clean"}, r.Names())
		assert.Equal(t, "second", r.Describe("build"))
	})
}

func TestRegistry_Lookup(t *testing.T) {
	r := newRegistry(t, &domain.Task{Name: "build"})

	task, err := r.Lookup("build")
	require.NoError(t, err)
	assert.Equal(t, "build", task.Name)

	_, err = r.Lookup("deploy")
	require.ErrorIs(t, err, domain.ErrUnknownTask)
	assert.Equal(t, "deploy", domain.MetadataValue(err, "task"))
}

func TestRegistry_Describe(t *testing.T) {
	r := newRegistry(t,
		&domain.Task{Name: "copy-sources", Description: "copy the generic java sources"},
		&domain.Task{Name: "build"},
	)

	assert.Equal(t, "copy the generic java sources", r.Describe("copy-sources"))
	assert.Empty(t, r.Describe("build"))
	assert.Empty(t, r.Describe("missing"))
}

func TestRegistry_Default(t *testing.T) {
	tests := []struct {
		name       string
		tasks      []*domain.Task
		configured string
		want       string
		wantErr    error
	}{
		{
			name:    "empty registry",
			wantErr: domain.ErrNoTasks,
		},
		{
			name:  "first registered task",
			tasks: []*domain.Task{{Name: "build"}, {Name: "clean"}},
			want:  "build",
		},
		{
			name:       "configured task",
			tasks:      []*domain.Task{{Name: "build"}, {Name: "clean"}},
			configured: "clean",
			want:       "clean",
		},
		{
			name:       "configured task missing",
			tasks:      []*domain.Task{{Name: "build"}},
			configured: "publish",
			wantErr:    domain.ErrUnknownTask,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(t, tt.tasks...)
			r.SetDefault(tt.configured)

			got, err := r.Default()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_All(t *testing.T) {
	r := newRegistry(t, &domain.Task{Name: "b"}, &domain.Task{Name: "a"}, &domain.Task{Name: "c"})

	var got []string
	for task := range r.All() {
		got = append(got, task.Name)
		if task.Name == "a" {
			break
		}
	}
	assert.Equal(t, []string{"b", "a"}, got)
}

func TestRegistry_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		tasks  []*domain.Task
		target string
		want   []string
	}{
		{
			name: "single dependency",
			tasks: []*domain.Task{
				{Name: "copy-sources"},
				{Name: "build", Dependencies: []string{"copy-sources"}},
			},
			target: "build",
			want:   []string{"copy-sources", "build"},
		},
		{
			name: "declaration order",
			tasks: []*domain.Task{
				{Name: "a"},
				{Name: "b"},
				{Name: "c"},
				{Name: "root", Dependencies: []string{"c", "a", "b"}},
			},
			target: "root",
			want:   []string{"c", "a", "b", "root"},
		},
		{
			name: "diamond runs shared dependency once",
			tasks: []*domain.Task{
				{Name: "base"},
				{Name: "left", Dependencies: []string{"base"}},
				{Name: "right", Dependencies: []string{"base"}},
				{Name: "top", Dependencies: []string{"left", "right"}},
			},
			target: "top",
			want:   []string{"base", "left", "right", "top"},
		},
		{
			name: "unrelated tasks are excluded",
			tasks: []*domain.Task{
				{Name: "clean"},
				{Name: "build"},
			},
			target: "build",
			want:   []string{"build"},
		},
		{
			name: "repeated dependency",
			tasks: []*domain.Task{
				{Name: "a"},
				{Name: "b", Dependencies: []string{"a", "a"}},
			},
			target: "b",
			want:   []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(t, tt.tasks...)

			plan, err := r.Resolve(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(plan))
		})
	}
}

func TestRegistry_Resolve_Cycle(t *testing.T) {
	tests := []struct {
		name   string
		tasks  []*domain.Task
		target string
		cycle  string
	}{
		{
			name: "two tasks",
			tasks: []*domain.Task{
				{Name: "A", Dependencies: []string{"B"}},
				{Name: "B", Dependencies: []string{"A"}},
			},
			target: "A",
			cycle:  "A -> B -> A",
		},
		{
			name: "self dependency",
			tasks: []*domain.Task{
				{Name: "A", Dependencies: []string{"A"}},
			},
			target: "A",
			cycle:  "A -> A",
		},
		{
			name: "cycle below the target",
			tasks: []*domain.Task{
				{Name: "top", Dependencies: []string{"x"}},
				{Name: "x", Dependencies: []string{"y"}},
				{Name: "y", Dependencies: []string{"z"}},
				{Name: "z", Dependencies: []string{"x"}},
			},
			target: "top",
			cycle:  "x -> y -> z -> x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(t, tt.tasks...)

			plan, err := r.Resolve(tt.target)
			require.ErrorIs(t, err, domain.ErrDependencyCycle)
			assert.Nil(t, plan)

			zErr, ok := err.(*zerr.Error)
			require.True(t, ok, "expected *zerr.Error, got %T", err)
			assert.Equal(t, tt.cycle, zErr.Metadata()["cycle"])
			assert.Contains(t, err.Error(), tt.cycle)
		})
	}
}

func TestRegistry_Resolve_UnknownTask(t *testing.T) {
	r := newRegistry(t,
		&domain.Task{Name: "build", Dependencies: []string{"copy-sources"}},
	)

	_, err := r.Resolve("deploy")
	require.ErrorIs(t, err, domain.ErrUnknownTask)
	assert.Equal(t, "deploy", domain.MetadataValue(err, "task"))

	_, err = r.Resolve("build")
	require.ErrorIs(t, err, domain.ErrUnknownTask)
	assert.Equal(t, "copy-sources", domain.MetadataValue(err, "task"))
	assert.Equal(t, "build", domain.MetadataValue(err, "required_by"))
}
