package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rbuild/internal/app"
	"go.trai.ch/rbuild/internal/core/domain"
	"go.trai.ch/rbuild/internal/core/ports"
	"go.trai.ch/rbuild/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const taskfilePath = "/repo/rbuild.yaml"

type appTestMocks struct {
	loader   *mocks.MockConfigLoader
	executor *mocks.MockExecutor
	versions *mocks.MockVersionStore
	watcher  *mocks.MockWatcher
	logger   *mocks.MockLogger
}

type appOutput struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func setupApp(t *testing.T) (*app.App, appTestMocks, appOutput) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	ctrl := gomock.NewController(t)
	m := appTestMocks{
		loader:   mocks.NewMockConfigLoader(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		versions: mocks.NewMockVersionStore(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	out := appOutput{stdout: new(bytes.Buffer), stderr: new(bytes.Buffer)}

	a := app.New(m.loader, m.executor, m.versions, m.watcher, m.logger).
		WithOutput(out.stdout, out.stderr).
		WithWorkDir("/repo/android").
		WithEnviron(func() []string { return []string{"HOME=/home/dev", "PATH=/usr/bin"} })
	return a, m, out
}

// androidTaskfile mirrors the tasks of the android build.
func androidTaskfile(t *testing.T) *domain.Taskfile {
	t.Helper()
	registry := domain.NewRegistry()
	require.NoError(t, registry.Register(&domain.Task{
		Name:        "copy-sources",
		Description: "copy the generic java sources in the android folder",
		BaseDir:     "/repo",
		Commands:    []domain.Command{domain.NewShellCommand(nil, "mkdir -p $ANDROID_DEST_BASE")},
	}))
	require.NoError(t, registry.Register(&domain.Task{
		Name:         "build",
		Description:  "build the android library",
		Dependencies: []string{"copy-sources"},
		BaseDir:      "/repo/SampleApp",
		Commands:     []domain.Command{{Program: "gradle", Args: []string{"assemble"}}},
	}))
	registry.SetDefault("build")

	return &domain.Taskfile{
		Path:     taskfilePath,
		Dir:      "/repo",
		Env:      map[string]string{"ANDROID_HOME": "${HOME}/Library/Android/sdk"},
		Registry: registry,
	}
}

func expectDiscovery(m appTestMocks, tf *domain.Taskfile) {
	m.loader.EXPECT().Discover("/repo/android").Return(taskfilePath, nil)
	m.loader.EXPECT().Load(taskfilePath).Return(tf, nil)
}

func TestApp_Run_DefaultTask(t *testing.T) {
	a, m, out := setupApp(t)
	expectDiscovery(m, androidTaskfile(t))

	var commands []string
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _ string, env []string, stdout, _ io.Writer) error {
			commands = append(commands, cmd.String())
			assert.Contains(t, env, "ANDROID_HOME=/home/dev/Library/Android/sdk")
			_, _ = io.WriteString(stdout, "ok\n")
			return nil
		}).Times(2)

	run, err := a.Run(context.Background(), "", app.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, "build", run.Target)
	assert.Equal(t, domain.StateSucceeded, run.State())
	assert.Equal(t, []string{"mkdir -p $ANDROID_DEST_BASE", "gradle assemble"}, commands)
	assert.Contains(t, out.stdout.String(), "[copy-sources] ok\n")
	assert.Contains(t, out.stdout.String(), "[build] ok\n")
	assert.Contains(t, out.stderr.String(), "Plan for build: copy-sources → build")
}

func TestApp_Run_ExplicitTaskfile(t *testing.T) {
	a, m, _ := setupApp(t)
	a.WithTaskfile("/elsewhere/rbuild.yaml")

	tf := androidTaskfile(t)
	m.loader.EXPECT().Load("/elsewhere/rbuild.yaml").Return(tf, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	run, err := a.Run(context.Background(), "copy-sources", app.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"copy-sources"}, run.Plan())
}

func TestApp_Run_CommandFailure(t *testing.T) {
	a, m, out := setupApp(t)
	expectDiscovery(m, androidTaskfile(t))

	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(zerr.With(zerr.Wrap(domain.ErrCommandFailed, "mkdir exited with status 1"), "exit_code", 1))

	run, err := a.Run(context.Background(), "build", app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrCommandFailed)
	assert.Equal(t, domain.StateFailed, run.State())
	assert.Equal(t, domain.TaskSkipped, run.TaskStatus("build"))
	assert.Contains(t, out.stderr.String(), "[copy-sources] ✗ Failed after")
}

func TestApp_Run_DryRun(t *testing.T) {
	a, m, _ := setupApp(t)
	expectDiscovery(m, androidTaskfile(t))
	m.logger.EXPECT().Info(gomock.Any())

	run, err := a.Run(context.Background(), "build", app.RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 0, run.CommandsExecuted())
}

func TestApp_Run_LoadErrors(t *testing.T) {
	t.Run("discovery", func(t *testing.T) {
		a, m, _ := setupApp(t)
		m.loader.EXPECT().Discover("/repo/android").Return("", zerr.Wrap(domain.ErrConfigNotFound, "no taskfile"))

		run, err := a.Run(context.Background(), "build", app.RunOptions{})
		require.ErrorIs(t, err, domain.ErrConfigNotFound)
		assert.Nil(t, run)
	})

	t.Run("empty taskfile has no default", func(t *testing.T) {
		a, m, _ := setupApp(t)
		expectDiscovery(m, &domain.Taskfile{Path: taskfilePath, Dir: "/repo", Registry: domain.NewRegistry()})

		_, err := a.Run(context.Background(), "", app.RunOptions{})
		require.ErrorIs(t, err, domain.ErrNoTasks)
	})
}

func TestApp_List(t *testing.T) {
	a, m, _ := setupApp(t)
	expectDiscovery(m, androidTaskfile(t))

	tasks, err := a.List()
	require.NoError(t, err)
	assert.Equal(t, []app.TaskSummary{
		{Name: "copy-sources", Description: "copy the generic java sources in the android folder"},
		{Name: "build", Description: "build the android library", Default: true},
	}, tasks)
}

func TestApp_Describe(t *testing.T) {
	t.Run("known task", func(t *testing.T) {
		a, m, _ := setupApp(t)
		expectDiscovery(m, androidTaskfile(t))

		detail, err := a.Describe("build")
		require.NoError(t, err)
		assert.Equal(t, app.TaskDetail{
			Name:         "build",
			Description:  "build the android library",
			Dir:          "/repo/SampleApp",
			Dependencies: []string{"copy-sources"},
			Commands:     []string{"gradle assemble"},
			Plan:         []string{"copy-sources", "build"},
		}, detail)
	})

	t.Run("unknown task", func(t *testing.T) {
		a, m, _ := setupApp(t)
		expectDiscovery(m, androidTaskfile(t))

		_, err := a.Describe("publish")
		require.ErrorIs(t, err, domain.ErrUnknownTask)
	})
}

func TestApp_Bump(t *testing.T) {
	a, m, _ := setupApp(t)

	oldVersion := domain.Version{Major: 1, Minor: 2, Patch: 3}
	newVersion := domain.Version{Major: 1, Minor: 2, Patch: 4}
	m.versions.EXPECT().Bump("VERSION", domain.PartPatch).Return(oldVersion, newVersion, nil)
	m.logger.EXPECT().Info("bumped VERSION from 1.2.3 to 1.2.4")

	gotOld, gotNew, err := a.Bump("VERSION", domain.PartPatch)
	require.NoError(t, err)
	assert.Equal(t, oldVersion, gotOld)
	assert.Equal(t, newVersion, gotNew)
}

type ttySetter struct {
	*mocks.MockExecutor
	mode domain.TTYMode
}

func (s *ttySetter) SetTTYMode(mode domain.TTYMode) { s.mode = mode }

type jsonSetter struct {
	*mocks.MockLogger
	json bool
}

func (s *jsonSetter) SetJSON(enable bool) { s.json = enable }

func TestApp_Configure(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	executor := &ttySetter{MockExecutor: mocks.NewMockExecutor(ctrl)}
	log := &jsonSetter{MockLogger: mocks.NewMockLogger(ctrl)}

	a := app.New(loader, executor, mocks.NewMockVersionStore(ctrl), mocks.NewMockWatcher(ctrl), log)

	require.NoError(t, a.Configure(app.Overrides{
		File:      "/tmp/rbuild.yaml",
		LogFormat: domain.LogFormatJSON,
		TTY:       domain.TTYNever,
	}))
	assert.True(t, log.json)
	assert.Equal(t, domain.TTYNever, executor.mode)

	loader.EXPECT().Load("/tmp/rbuild.yaml").Return(nil, zerr.Wrap(domain.ErrConfigReadFailed, "missing"))
	_, err := a.List()
	require.ErrorIs(t, err, domain.ErrConfigReadFailed)

	err = a.Configure(app.Overrides{TTY: "sometimes"})
	require.ErrorIs(t, err, domain.ErrInvalidSetting)
}

// versionTaskfile holds a single task that bumps /repo/VERSION.
func versionTaskfile(t *testing.T) *domain.Taskfile {
	t.Helper()
	registry := domain.NewRegistry()
	require.NoError(t, registry.Register(&domain.Task{
		Name:     "inc-version",
		BaseDir:  "/repo",
		Commands: []domain.Command{{Bump: &domain.BumpSpec{File: "VERSION", Part: domain.PartMinor}}},
	}))
	return &domain.Taskfile{Path: taskfilePath, Dir: "/repo", Registry: registry}
}

func batches(events ...[]ports.WatchEvent) iter.Seq[[]ports.WatchEvent] {
	return func(yield func([]ports.WatchEvent) bool) {
		for _, batch := range events {
			if !yield(batch) {
				return
			}
		}
	}
}

func TestApp_Watch(t *testing.T) {
	t.Run("runs again after a change", func(t *testing.T) {
		a, m, _ := setupApp(t)
		tf := androidTaskfile(t)
		m.loader.EXPECT().Discover("/repo/android").Return(taskfilePath, nil)
		m.loader.EXPECT().Load(taskfilePath).Return(tf, nil).Times(3)

		m.watcher.EXPECT().Start(gomock.Any(), "/repo").Return(nil)
		m.watcher.EXPECT().Events().Return(batches(
			[]ports.WatchEvent{{Path: "/repo/SampleApp/Main.java", Operation: ports.OpWrite}},
		))
		m.watcher.EXPECT().Stop().Return(nil)
		m.logger.EXPECT().Info("1 file(s) changed, running again")

		runs := 0
		m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, domain.Command, string, []string, io.Writer, io.Writer) error {
				runs++
				return nil
			}).Times(2)

		err := a.Watch(context.Background(), "copy-sources", app.RunOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, runs)
	})

	t.Run("ignores the files its own bump rewrote", func(t *testing.T) {
		a, m, _ := setupApp(t)
		tf := versionTaskfile(t)
		m.loader.EXPECT().Discover("/repo/android").Return(taskfilePath, nil)
		m.loader.EXPECT().Load(taskfilePath).Return(tf, nil).Times(2)

		m.watcher.EXPECT().Start(gomock.Any(), "/repo").Return(nil)
		m.watcher.EXPECT().Events().Return(batches(
			[]ports.WatchEvent{{Path: "/repo/VERSION", Operation: ports.OpCreate}},
		))
		m.watcher.EXPECT().Stop().Return(nil)

		m.versions.EXPECT().Bump("/repo/VERSION", domain.PartMinor).
			Return(domain.Version{Major: 1}, domain.Version{Major: 1, Minor: 1}, nil).Times(1)

		require.NoError(t, a.Watch(context.Background(), "inc-version", app.RunOptions{}))
	})

	t.Run("other changes in the same batch still count", func(t *testing.T) {
		a, m, _ := setupApp(t)
		tf := versionTaskfile(t)
		m.loader.EXPECT().Discover("/repo/android").Return(taskfilePath, nil)
		m.loader.EXPECT().Load(taskfilePath).Return(tf, nil).Times(3)

		m.watcher.EXPECT().Start(gomock.Any(), "/repo").Return(nil)
		m.watcher.EXPECT().Events().Return(batches(
			[]ports.WatchEvent{
				{Path: "/repo/VERSION", Operation: ports.OpCreate},
				{Path: "/repo/CHANGELOG.md", Operation: ports.OpWrite},
			},
		))
		m.watcher.EXPECT().Stop().Return(nil)
		m.logger.EXPECT().Info("1 file(s) changed, running again")

		m.versions.EXPECT().Bump("/repo/VERSION", domain.PartMinor).
			Return(domain.Version{Major: 1}, domain.Version{Major: 1, Minor: 1}, nil).Times(2)

		require.NoError(t, a.Watch(context.Background(), "inc-version", app.RunOptions{}))
	})

	t.Run("failed runs are logged", func(t *testing.T) {
		a, m, _ := setupApp(t)
		tf := androidTaskfile(t)
		m.loader.EXPECT().Discover("/repo/android").Return(taskfilePath, nil)
		m.loader.EXPECT().Load(taskfilePath).Return(tf, nil).Times(2)

		m.watcher.EXPECT().Start(gomock.Any(), "/repo").Return(nil)
		m.watcher.EXPECT().Events().Return(batches())
		m.watcher.EXPECT().Stop().Return(nil)

		m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(zerr.With(zerr.Wrap(domain.ErrCommandFailed, "mkdir exited with status 1"), "exit_code", 1))
		m.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
			assert.ErrorIs(t, err, domain.ErrCommandFailed)
		})

		require.NoError(t, a.Watch(context.Background(), "copy-sources", app.RunOptions{}))
	})

	t.Run("interrupted", func(t *testing.T) {
		a, m, _ := setupApp(t)
		ctx, cancel := context.WithCancel(context.Background())

		tf := androidTaskfile(t)
		m.loader.EXPECT().Discover("/repo/android").Return(taskfilePath, nil)
		m.loader.EXPECT().Load(taskfilePath).Return(tf, nil).Times(2)

		m.watcher.EXPECT().Start(gomock.Any(), "/repo").Return(nil)
		m.watcher.EXPECT().Events().Return(func(func([]ports.WatchEvent) bool) {
			<-ctx.Done()
		})
		m.watcher.EXPECT().Stop().Return(nil)

		m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, domain.Command, string, []string, io.Writer, io.Writer) error {
				cancel()
				return nil
			})

		err := a.Watch(ctx, "copy-sources", app.RunOptions{})
		require.ErrorIs(t, err, domain.ErrInterrupted)
		assert.Equal(t, domain.ExitInterrupted, domain.ExitCode(err))
	})

	t.Run("watcher fails to start", func(t *testing.T) {
		a, m, _ := setupApp(t)
		expectDiscovery(m, androidTaskfile(t))
		m.watcher.EXPECT().Start(gomock.Any(), "/repo").Return(zerr.Wrap(domain.ErrWatchFailed, "too many open files"))

		err := a.Watch(context.Background(), "build", app.RunOptions{})
		require.ErrorIs(t, err, domain.ErrWatchFailed)
		assert.False(t, errors.Is(err, domain.ErrInterrupted))
	})
}
