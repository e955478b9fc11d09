package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcmark.dev/pkg/pcmark/internal/adapter"
	m "pcmark.dev/pkg/pcmark/internal/model"
)

func newTestEmitter(configPath string) Emitter {
	fs := adapter.NewLocalSourceFSAdapter()
	parser := adapter.NewLocalJSXFileAdapter()

	return NewEmitter(fs, adapter.NewLocalFormatterAdapter("", 0), NewInstrumenter(parser, SequentialIDs("e")), m.Path(configPath))
}

func scanForEmit(t *testing.T, root string) *m.Inventory {
	t.Helper()

	inv, err := newTestInventoryBuilder(t).Build(context.Background(), InventoryArgs{Root: m.Path(root)}, m.NewRunState())
	require.NoError(t, err)

	return inv
}

func TestEmitter_Emit(t *testing.T) {
	root := sampleProject(t)
	out := t.TempDir()
	config := filepath.Join(t.TempDir(), ".prettierrc")
	writeTestFile(t, filepath.Dir(config), ".prettierrc", `{"semi": true, "endOfLine": "lf"}`)

	inv := scanForEmit(t, root)
	emitter := newTestEmitter(config)

	require.NoError(t, emitter.MirrorDirectories(context.Background(), m.Path(out), inv))
	assert.DirExists(t, filepath.Join(out, "src"))
	assert.DirExists(t, filepath.Join(out, "build"))

	report := emitter.Emit(context.Background(), m.Path(root), m.Path(out), inv.Find("src/App.jsx"))
	require.NoError(t, report.Err)
	assert.Equal(t, m.StatusInstrumented, report.Status)
	assert.Equal(t, 1, report.Components)
	assert.Equal(t, 1, report.Elements)
	assert.Equal(t, 1, report.Roots)

	got, err := os.ReadFile(filepath.Join(out, "src", "App.jsx"))
	require.NoError(t, err)
	assert.Equal(t,
		"export default function App(props) {\n  return <div pc_el_id=\"unique_id_e1\" pc_comp_name=\"App\" pc_comp_ref_id={props.pc_el_id}>App</div>;\n}\n",
		string(got))
}

func TestEmitter_ZeroComponentFilesCopiedVerbatim(t *testing.T) {
	root := sampleProject(t)
	out := t.TempDir()

	// Trailing whitespace and missing final newline would be normalized if
	// the file went through the formatter.
	writeTestFile(t, root, "src/util.js", "export const sum = (a, b) => a + b;   ")

	inv := scanForEmit(t, root)
	emitter := newTestEmitter(filepath.Join(root, "missing-config"))

	for _, rel := range []m.Path{"src/util.js", "src/Base.jsx", "README.md", "src/index.js"} {
		report := emitter.Emit(context.Background(), m.Path(root), m.Path(out), inv.Find(rel))
		require.NoError(t, report.Err, rel)
		assert.Equal(t, m.StatusCopied, report.Status, rel)

		want, err := os.ReadFile(filepath.Join(root, string(rel)))
		require.NoError(t, err)

		got, err := os.ReadFile(filepath.Join(out, string(rel)))
		require.NoError(t, err)

		assert.Equal(t, want, got, rel)
	}
}

func TestEmitter_MissingFormatConfigFailsFile(t *testing.T) {
	root := sampleProject(t)
	out := t.TempDir()

	inv := scanForEmit(t, root)
	emitter := newTestEmitter(filepath.Join(root, ".prettierrc"))

	report := emitter.Emit(context.Background(), m.Path(root), m.Path(out), inv.Find("src/App.jsx"))
	assert.Equal(t, m.StatusFailed, report.Status)
	require.ErrorIs(t, report.Err, adapter.ErrFormatConfig)
	assert.NoFileExists(t, filepath.Join(out, "src", "App.jsx"))
}

func TestEmitter_Render(t *testing.T) {
	root := sampleProject(t)
	config := filepath.Join(root, ".prettierrc")
	writeTestFile(t, root, ".prettierrc", "semi: true\n")

	inv := scanForEmit(t, root)
	emitter := newTestEmitter(config)

	code, report := emitter.Render(context.Background(), m.Path(root), inv.Find("src/App.jsx"))
	require.NoError(t, report.Err)
	assert.Equal(t, m.StatusInstrumented, report.Status)
	assert.Contains(t, string(code), `pc_comp_name="App"`)

	code, report = emitter.Render(context.Background(), m.Path(root), inv.Find("README.md"))
	require.NoError(t, report.Err)
	assert.Equal(t, m.StatusCopied, report.Status)
	assert.Equal(t, "# sample\n", string(code))
}

func TestEmitter_SourceChangedToInvalid(t *testing.T) {
	root := sampleProject(t)
	out := t.TempDir()
	writeTestFile(t, root, ".prettierrc", "{}")

	inv := scanForEmit(t, root)
	writeTestFile(t, root, "src/App.jsx", "export default function App( {\n")

	require.NoError(t, newTestEmitter(filepath.Join(root, ".prettierrc")).MirrorDirectories(context.Background(), m.Path(out), inv))

	report := newTestEmitter(filepath.Join(root, ".prettierrc")).Emit(context.Background(), m.Path(root), m.Path(out), inv.Find("src/App.jsx"))
	require.NoError(t, report.Err)
	assert.Equal(t, m.StatusCopied, report.Status)

	got, err := os.ReadFile(filepath.Join(out, "src", "App.jsx"))
	require.NoError(t, err)
	assert.Equal(t, "export default function App( {\n", string(got))
}

func TestEmitter_HonorsJSXSingleQuote(t *testing.T) {
	root := sampleProject(t)
	writeTestFile(t, root, ".prettierrc", "jsxSingleQuote: true\n")

	inv := scanForEmit(t, root)

	code, report := newTestEmitter(filepath.Join(root, ".prettierrc")).Render(context.Background(), m.Path(root), inv.Find("src/App.jsx"))
	require.NoError(t, report.Err)
	assert.Contains(t, string(code), `<div pc_el_id='unique_id_e1' pc_comp_name='App' pc_comp_ref_id={props.pc_el_id}>`)
}
