package conda

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeEnvFile writes an environment.yml fixture and returns its path.
func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "environment.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestParseEnvFile verifies parsing of a realistic environment.yml,
// including the nested pip: section that conda allows in dependencies.
func TestParseEnvFile(t *testing.T) {
	path := writeEnvFile(t, `name: trellis
channels:
  - pytorch
  - defaults
dependencies:
  - python=3.10
  - pip
  - pip:
      - rembg
`)

	f, err := ParseEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "trellis", f.Name)
	assert.Equal(t, "3.10", f.PythonVersion())
}

// TestParseEnvFileExactPin verifies that the "python==3.10.14" exact-pin
// form also resolves.
func TestParseEnvFileExactPin(t *testing.T) {
	path := writeEnvFile(t, `name: studio
dependencies:
  - python==3.10.14
`)

	f, err := ParseEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3.10.14", f.PythonVersion())
}

// TestParseEnvFileNoPythonPin verifies that a file without an
// interpreter pin reports an empty version rather than failing.
func TestParseEnvFileNoPythonPin(t *testing.T) {
	path := writeEnvFile(t, `name: minimal
dependencies:
  - numpy
`)

	f, err := ParseEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "", f.PythonVersion())
}

// TestParseEnvFileMissingName verifies that a nameless environment file
// is rejected — without a name the idempotence existence check cannot run.
func TestParseEnvFileMissingName(t *testing.T) {
	path := writeEnvFile(t, `dependencies:
  - python=3.10
`)

	_, err := ParseEnvFile(path)
	assert.Error(t, err)
}

// TestEffectiveEnvName verifies name resolution: the file's declared
// name wins when a file is configured, the fallback applies otherwise,
// and an unreadable file propagates its error.
func TestEffectiveEnvName(t *testing.T) {
	path := writeEnvFile(t, `name: studio
dependencies:
  - python=3.10
`)

	name, err := EffectiveEnvName(path, "trellis")
	require.NoError(t, err)
	assert.Equal(t, "studio", name)

	name, err = EffectiveEnvName("", "trellis")
	require.NoError(t, err)
	assert.Equal(t, "trellis", name)

	_, err = EffectiveEnvName(filepath.Join(t.TempDir(), "nope.yml"), "trellis")
	assert.Error(t, err)
}

// TestParseEnvFileErrors verifies missing-file and malformed-YAML errors.
func TestParseEnvFileErrors(t *testing.T) {
	_, err := ParseEnvFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)

	bad := writeEnvFile(t, "name: [unclosed")
	_, err = ParseEnvFile(bad)
	assert.Error(t, err)
}
