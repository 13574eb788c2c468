package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/fmto/internal/testutil"
	"github.com/leapstack-labs/fmto/pkg/converter"
)

const sampleConf = `# service settings
{
  "name" = "svc"
  "port": 8080
  "db" = {
    "host" = "localhost"
    "replicas" = ["a", "b"]
  }
}
`

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	return New(Config{WorkDir: dir, Logger: testutil.NewTestLogger(t)}), dir
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func targetsOf(p *Plan) map[string]converter.Format {
	out := make(map[string]converter.Format, len(p.Targets))
	for _, t := range p.Targets {
		out[t.Path] = t.Format
	}
	return out
}

func TestPlan(t *testing.T) {
	e, dir := newTestEngine(t)

	tests := []struct {
		name string
		job  Job
		want map[string]converter.Format
	}{
		{
			name: "explicit outputs by extension",
			job:  Job{Input: "app.conf", Outputs: []string{"out/app.json", "app.yml"}},
			want: map[string]converter.Format{
				filepath.Join(dir, "out/app.json"): converter.JSON,
				filepath.Join(dir, "app.yml"):      converter.YAML,
			},
		},
		{
			name: "explicit outputs with formats by position",
			job:  Job{Input: "app.conf", Outputs: []string{"a.txt", "b.json"}, OutputFormats: []string{"toml"}},
			want: map[string]converter.Format{
				filepath.Join(dir, "a.txt"):  converter.TOML,
				filepath.Join(dir, "b.json"): converter.JSON,
			},
		},
		{
			name: "output dir with requested formats",
			job:  Job{Input: "cfg/app.conf", OutputDir: "dist", OutputFormats: []string{"json", "env"}},
			want: map[string]converter.Format{
				filepath.Join(dir, "dist/app.json"): converter.JSON,
				filepath.Join(dir, "dist/app.env"):  converter.ENV,
			},
		},
		{
			name: "working directory default",
			job:  Job{Input: "cfg/app.conf", OutputFormats: []string{"yaml"}},
			want: map[string]converter.Format{
				filepath.Join(dir, "app.yaml"): converter.YAML,
			},
		},
		{
			name: "working directory defaults to input format",
			job:  Job{Input: "cfg/app.json"},
			want: map[string]converter.Format{
				filepath.Join(dir, "app.json"): converter.JSON,
			},
		},
		{
			name: "input format override",
			job:  Job{Input: "settings.txt", InputFormat: "yml", OutputFormats: []string{"json"}},
			want: map[string]converter.Format{
				filepath.Join(dir, "settings.json"): converter.JSON,
			},
		},
		{
			name: "dotfile stem",
			job:  Job{Input: ".env", OutputFormats: []string{"json"}},
			want: map[string]converter.Format{
				filepath.Join(dir, "env.json"): converter.JSON,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := e.Plan(tt.job)
			require.NoError(t, err)
			assert.Equal(t, tt.want, targetsOf(plan))
		})
	}
}

func TestPlan_OutputDirFansOutToEveryFormat(t *testing.T) {
	e, dir := newTestEngine(t)

	plan, err := e.Plan(Job{Input: "app.conf", OutputDir: "all"})
	require.NoError(t, err)
	require.Len(t, plan.Targets, len(converter.Formats()))
	for i, f := range converter.Formats() {
		assert.Equal(t, filepath.Join(dir, "all", "app."+f.Extension()), plan.Targets[i].Path)
		assert.Equal(t, f, plan.Targets[i].Format)
	}

	// Fanning out next to the input skips the input itself.
	plan, err = e.Plan(Job{Input: "app.conf", OutputDir: "."})
	require.NoError(t, err)
	assert.Len(t, plan.Targets, len(converter.Formats())-1)
	assert.NotContains(t, targetsOf(plan), filepath.Join(dir, "app.conf"))
}

func TestPlan_Errors(t *testing.T) {
	e, _ := newTestEngine(t)

	tests := []struct {
		name    string
		job     Job
		wantErr error
	}{
		{"no input", Job{}, ErrNoInput},
		{"unknown input extension", Job{Input: "data.csv"}, ErrNoInputFormat},
		{"stdin without format", Job{Input: StdinPath, OutputFormats: []string{"json"}}, ErrNoInputFormat},
		{"unknown output extension", Job{Input: "a.conf", Outputs: []string{"out.txt"}}, ErrNoOutputFormat},
		{"too many formats", Job{Input: "a.conf", Outputs: []string{"x.json"}, OutputFormats: []string{"json", "yaml"}}, ErrTooManyFormats},
		{"overwrites input", Job{Input: "a.conf"}, ErrTargetIsInput},
		{"explicit output equals input", Job{Input: "a.json", Outputs: []string{"./a.json"}}, ErrTargetIsInput},
		{"duplicate output", Job{Input: "a.conf", Outputs: []string{"x.json", "x.json"}}, ErrDuplicateTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Plan(tt.job)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := e.Plan(Job{Input: "a.conf", OutputFormats: []string{"csv"}})
	var unknown *converter.UnknownFormatError
	assert.ErrorAs(t, err, &unknown)
}

func TestConvert_WritesAllTargets(t *testing.T) {
	e, dir := newTestEngine(t)
	writeInput(t, dir, "app.conf", sampleConf)

	results, err := e.Convert(context.Background(), Job{
		Input:         "app.conf",
		OutputDir:     "nested/out",
		OutputFormats: []string{"json", "yaml", "toml", "env"},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Zero(t, Failed(results))

	src, err := converter.MustLookup(converter.HOCON).Parse(sampleConf)
	require.NoError(t, err)

	for _, r := range results {
		require.NoError(t, r.Err)
		b, err := os.ReadFile(r.Target.Path)
		require.NoError(t, err)
		assert.Equal(t, r.Bytes, len(b))

		if r.Target.Format == converter.ENV {
			assert.Equal(t, "name=\"svc\"\n", string(b))
			continue
		}
		back, err := converter.MustLookup(r.Target.Format).Parse(string(b))
		require.NoError(t, err, r.Target.Path)
		assert.True(t, src.Equal(back), "%s: got %s", r.Target.Path, back)
	}
}

func TestConvert_ParseFailure(t *testing.T) {
	e, dir := newTestEngine(t)
	writeInput(t, dir, "bad.conf", `{"a": 1.2.3}`)

	results, err := e.Convert(context.Background(), Job{Input: "bad.conf", OutputFormats: []string{"json"}})
	require.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "invalid number")

	var convErr *converter.Error
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, converter.HOCON, convErr.Format)

	_, err = os.Stat(filepath.Join(dir, "bad.json"))
	assert.True(t, os.IsNotExist(err), "nothing is written on parse failure")
}

func TestConvert_MissingInput(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Convert(context.Background(), Job{Input: "missing.conf", OutputFormats: []string{"json"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConvert_TargetFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	logger, logs := testutil.NewCaptureLogger(t)
	e := New(Config{WorkDir: dir, Logger: logger})
	writeInput(t, dir, "app.json", `{"a": "b"}`)
	// A regular file where a directory is needed makes one target fail.
	writeInput(t, dir, "blocked", "")

	results, err := e.Convert(context.Background(), Job{
		Input:   "app.json",
		Outputs: []string{"blocked/app.yaml", "ok/app.toml"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, Failed(results))
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)

	assert.Contains(t, logs.String(), "msg=\"target failed\"")
	assert.Contains(t, logs.String(), "failed=1")
}

func TestConvert_Stdin(t *testing.T) {
	e, dir := newTestEngine(t)

	results, err := e.Convert(context.Background(), Job{
		Input:         StdinPath,
		Stdin:         strings.NewReader(`{"k": "v"}`),
		InputFormat:   "json",
		OutputFormats: []string{"conf"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(dir, "stdin.conf"), results[0].Target.Path)

	b, err := os.ReadFile(results[0].Target.Path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\" = \"v\"\n}\n", string(b))

	_, err = e.Convert(context.Background(), Job{Input: StdinPath, InputFormat: "json", OutputFormats: []string{"yaml"}})
	assert.ErrorIs(t, err, ErrStdinUnavailable)
}

func TestConvert_CancelledContext(t *testing.T) {
	e, dir := newTestEngine(t)
	writeInput(t, dir, "app.conf", sampleConf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := e.Convert(ctx, Job{Input: "app.conf", OutputDir: "out"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, len(results), Failed(results))
}

func TestRender(t *testing.T) {
	e, dir := newTestEngine(t)
	writeInput(t, dir, "app.yaml", "name: svc\nport: 8080\n")

	outputs, err := e.Render(context.Background(), Job{Input: "app.yaml", OutputFormats: []string{"json"}})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, "{\n  \"name\": \"svc\",\n  \"port\": 8080\n}\n", outputs[0].Text)

	_, err = os.Stat(outputs[0].Target.Path)
	assert.True(t, os.IsNotExist(err), "render does not write files")
}

func TestPreview(t *testing.T) {
	e, dir := newTestEngine(t)
	writeInput(t, dir, "app.json", `{"b": 1, "a": [true]}`)

	t.Run("same format as input", func(t *testing.T) {
		out, err := e.Preview(Job{Input: "app.json"}, "json")
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    true\n  ]\n}\n", out)
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := e.Preview(Job{Input: StdinPath, Stdin: strings.NewReader("k=v\n"), InputFormat: "env"}, "yaml")
		require.NoError(t, err)
		assert.Equal(t, "k: v\n", out)
	})

	t.Run("unknown target format", func(t *testing.T) {
		_, err := e.Preview(Job{Input: "app.json"}, "csv")
		var unknown *converter.UnknownFormatError
		require.ErrorAs(t, err, &unknown)
	})

	t.Run("no input", func(t *testing.T) {
		_, err := e.Preview(Job{}, "json")
		assert.ErrorIs(t, err, ErrNoInput)
	})
}

func TestConvertString(t *testing.T) {
	e := New(Config{})
	out, err := e.ConvertString(`{"x": true, "y": null}`, converter.JSON, converter.HOCON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"x\" = true\n  \"y\" = null\n}\n", out)
}

func TestWatch(t *testing.T) {
	e, dir := newTestEngine(t)
	input := writeInput(t, dir, "app.conf", `{"v": 1}`)
	output := filepath.Join(dir, "app.json")

	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan error, 16)
	done := make(chan error, 1)
	go func() {
		done <- e.Watch(ctx, Job{Input: "app.conf", OutputFormats: []string{"json"}}, func(_ []Result, err error) {
			runs <- err
		})
	}()

	waitRun := func() {
		t.Helper()
		select {
		case err := <-runs:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for conversion")
		}
	}

	waitRun()
	b, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"v": 1`)

	require.NoError(t, os.WriteFile(input, []byte(`{"v": 2}`), 0o600))
	waitRun()
	b, err = os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"v": 2`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_WaitsForRunningCallback(t *testing.T) {
	e, dir := newTestEngine(t)
	input := writeInput(t, dir, "app.conf", `{"v": 1}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	first := make(chan struct{})
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- e.Watch(ctx, Job{Input: "app.conf", OutputFormats: []string{"json"}}, func([]Result, error) {
			switch calls.Add(1) {
			case 1:
				close(first)
			case 2:
				close(entered)
				<-release
			}
		})
	}()

	select {
	case <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial conversion")
	}

	require.NoError(t, os.WriteFile(input, []byte(`{"v": 2}`), 0o600))
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change conversion")
	}

	cancel()
	select {
	case <-done:
		t.Fatal("watch returned while a callback was still running")
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	stopped := calls.Load()
	time.Sleep(3 * watchDebounce)
	assert.Equal(t, stopped, calls.Load(), "no callbacks after watch returned")
}

func TestWatch_RejectsStdin(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.Watch(context.Background(), Job{Input: StdinPath, InputFormat: "json"}, func([]Result, error) {})
	assert.ErrorIs(t, err, ErrWatchNeedsFile)
}
