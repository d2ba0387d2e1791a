package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestDefaultLoader_Load(t *testing.T) {
	p := writeEnv(t, t.TempDir(), ".env", `# Comment
FOO=bar
BAZ="quoted value"
EMPTY=
SINGLE_QUOTE='single'
export EXPORTED=yes
`)

	l := NewLoader()
	require.NoError(t, l.Load(p))
	assert.True(t, l.loaded)
	assert.Equal(t, "bar", l.vars["FOO"])
	assert.Equal(t, "quoted value", l.vars["BAZ"])
	assert.Equal(t, "", l.vars["EMPTY"])
	assert.Equal(t, "single", l.vars["SINGLE_QUOTE"])
	assert.Equal(t, "yes", l.vars["EXPORTED"])
}

func TestDefaultLoader_Load_LaterFileOverrides(t *testing.T) {
	dir := t.TempDir()
	a := writeEnv(t, dir, "a.env", "KEY=a\nONLY_A=1\n")
	b := writeEnv(t, dir, "b.env", "KEY=b\n")

	l := NewLoader()
	require.NoError(t, l.Load(a, b))
	assert.Equal(t, "b", l.vars["KEY"])
	assert.Equal(t, "1", l.vars["ONLY_A"])
}

func TestDefaultLoader_Load_FileNotFound(t *testing.T) {
	l := NewLoader()
	assert.Error(t, l.Load("/nonexistent/.env"))
}

func TestDefaultLoader_LoadOptional_SkipsMissing(t *testing.T) {
	dir := t.TempDir()
	p := writeEnv(t, dir, ".env", "X=1\n")

	l := NewLoader()
	require.NoError(t, l.LoadOptional(filepath.Join(dir, "missing"), p))
	assert.Equal(t, "1", l.vars["X"])

	empty := NewLoader()
	require.NoError(t, empty.LoadOptional(filepath.Join(dir, "missing")))
	assert.False(t, empty.loaded)
}

func TestDefaultLoader_Get_OSPrecedence(t *testing.T) {
	l := NewLoader()
	l.vars["LEARNFIL_TEST_KEY"] = "from_file"
	assert.Equal(t, "from_file", l.Get("LEARNFIL_TEST_KEY"))

	t.Setenv("LEARNFIL_TEST_KEY", "from_os")
	assert.Equal(t, "from_os", l.Get("LEARNFIL_TEST_KEY"))
	assert.Equal(t, "from_os", l.Lookup("TEST_KEY"))

	assert.Equal(t, "", l.Get("LEARNFIL_NONEXISTENT"))
}

func TestDefaultLoader_GetRequired(t *testing.T) {
	l := NewLoader()
	l.vars["REQ"] = "v"

	v, err := l.GetRequired("REQ")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = l.GetRequired("LEARNFIL_MISSING_REQ")
	assert.Error(t, err)
}

func TestDefaultLoader_GetWithDefault(t *testing.T) {
	l := NewLoader()
	l.vars["SET"] = "x"
	assert.Equal(t, "x", l.GetWithDefault("SET", "d"))
	assert.Equal(t, "d", l.GetWithDefault("LEARNFIL_UNSET", "d"))
}

func TestDefaultLoader_GetBool(t *testing.T) {
	l := NewLoader()
	l.vars["B_TRUE"] = "true"
	l.vars["B_BAD"] = "maybe"

	v, ok, err := l.GetBool("B_TRUE")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v)

	_, ok, err = l.GetBool("LEARNFIL_B_UNSET")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = l.GetBool("B_BAD")
	assert.Error(t, err)
	assert.True(t, ok)
}

func TestDefaultLoader_GetDuration(t *testing.T) {
	l := NewLoader()
	l.vars["D"] = "1500ms"
	l.vars["D_BAD"] = "soon"

	v, ok, err := l.GetDuration("D")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, v)

	_, _, err = l.GetDuration("D_BAD")
	assert.Error(t, err)
}

func TestDefaultLoader_SetAndAll(t *testing.T) {
	l := NewLoader()
	require.NoError(t, l.Set("LEARNFIL_SET_TEST", "val"))
	defer os.Unsetenv("LEARNFIL_SET_TEST")

	assert.Equal(t, "val", os.Getenv("LEARNFIL_SET_TEST"))

	all := l.All()
	assert.Equal(t, "val", all["LEARNFIL_SET_TEST"])
	all["LEARNFIL_SET_TEST"] = "mutated"
	assert.Equal(t, "val", l.vars["LEARNFIL_SET_TEST"])
}
