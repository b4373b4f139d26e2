package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lugehorsam/postfix-spreadsheet/internal/render"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeSheet(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "sheet.csv")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	return name
}

func run(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Run(append([]string{ProgramName}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestParseArgs(t *testing.T) {
	cfg, err := ParseArgs([]string{ProgramName, "-i", "-n", "-p", "2", "-o", "out.csv", "in.csv"})
	require.NoError(t, err)
	assert.True(t, cfg.Interactive)
	assert.False(t, cfg.Options.Memoize)
	assert.Equal(t, 2, cfg.Options.Precision)
	assert.Equal(t, "out.csv", cfg.Output)
	assert.Equal(t, []string{"in.csv"}, cfg.Files)

	cfg, err = ParseArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Files)
	assert.Equal(t, render.DefaultOptions(), cfg.Options)

	_, err = ParseArgs([]string{ProgramName, "-p", "x", "in.csv"})
	assert.EqualError(t, err, "invalid precision: x")

	_, err = ParseArgs([]string{ProgramName, "-z"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Run("renders_file", func(t *testing.T) {
		code, stdout, stderr := run(writeSheet(t, "3 4 +,A2\n5,A1\n"))
		assert.Equal(t, 0, code)
		assert.Equal(t, "7,5\n5,7\n", stdout)
		assert.Empty(t, stderr)
	})

	t.Run("precision", func(t *testing.T) {
		_, stdout, _ := run("-p", "5", writeSheet(t, "1 3 /,10 4 -"))
		assert.Equal(t, "0.33333,6\n", stdout)
	})

	t.Run("no_arguments", func(t *testing.T) {
		code, stdout, _ := run()
		assert.Equal(t, 0, code)
		assert.Equal(t, Usage+"\n", stdout)
	})

	t.Run("too_many_arguments", func(t *testing.T) {
		code, stdout, _ := run("a.csv", "b.csv")
		assert.Equal(t, 0, code)
		assert.Equal(t, Usage+"\n", stdout)
	})

	t.Run("missing_file", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "missing.csv")
		code, stdout, _ := run(name)
		assert.Equal(t, 0, code)
		assert.Equal(t, "File not found: "+name+"\n", stdout)
	})

	t.Run("bad_option", func(t *testing.T) {
		code, stdout, _ := run("-p", "99", "a.csv")
		assert.Equal(t, 0, code)
		assert.Equal(t, "invalid precision: 99\n"+Usage+"\n", stdout)
	})

	t.Run("help", func(t *testing.T) {
		code, stdout, _ := run("-h")
		assert.Equal(t, 0, code)
		assert.Contains(t, stdout, Usage)
		assert.Contains(t, stdout, "-s addr")
	})

	t.Run("output_file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.csv")
		code, stdout, _ := run("-o", out, writeSheet(t, "1,A1 1 +"))
		assert.Equal(t, 0, code)
		assert.Empty(t, stdout)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "1,2\n", string(data))
	})

	t.Run("output_file_error", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "no", "such", "dir.csv")
		code, _, stderr := run("-o", out, writeSheet(t, "1"))
		assert.Equal(t, ExitCodeMainError, code)
		assert.Contains(t, stderr, "error writing")
	})

	t.Run("serve", func(t *testing.T) {
		var gotAddr string
		var gotOpts render.Options
		serve = func(addr string, opts render.Options) error {
			gotAddr, gotOpts = addr, opts
			return errors.New("address in use")
		}
		t.Cleanup(func() { serve = defaultServe })

		code, _, stderr := run("-s", ":9000", "-p", "1")
		assert.Equal(t, ExitCodeMainError, code)
		assert.Equal(t, ":9000", gotAddr)
		assert.Equal(t, 1, gotOpts.Precision)
		assert.Equal(t, "address in use\n", stderr)
	})

	t.Run("interactive", func(t *testing.T) {
		newScreen = func() (tcell.Screen, error) {
			return quitScreen{tcell.NewSimulationScreen("")}, nil
		}
		t.Cleanup(func() { newScreen = defaultNewScreen })

		code, stdout, _ := run("-i", writeSheet(t, "1 2 +"))
		assert.Equal(t, 0, code)
		assert.Empty(t, stdout)
	})
}

var (
	defaultServe     = serve
	defaultNewScreen = newScreen
)

// quitScreen presses q as soon as it is initialized.
type quitScreen struct {
	tcell.SimulationScreen
}

func (s quitScreen) Init() error {
	if err := s.SimulationScreen.Init(); err != nil {
		return err
	}
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	return nil
}
