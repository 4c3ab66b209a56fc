package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for the duration of a test.
// Load falls back to kiln.jsonc in the current directory, so tests that
// exercise the fallback need a controlled cwd.
func chdir(t *testing.T, dir string) {
	t.Helper()

	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// TestLoadDefaults verifies that with no config file present, Load
// returns the built-in defaults.
func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "trellis", cfg.EnvName)
	assert.Equal(t, "3.10", cfg.PythonVersion)
	assert.Equal(t, "https://github.com/microsoft/TRELLIS.git", cfg.RepoURL)
	assert.Equal(t, []string{
		"torch==2.4.0",
		"torchvision==0.19.0",
		"torchaudio==2.4.0",
	}, cfg.PinnedPackages)
	assert.Equal(t, "HF_ENDPOINT", cfg.MirrorVar)
	assert.Equal(t, "https://hf-mirror.com", cfg.MirrorURL)
	assert.Len(t, cfg.NativeModules, 2)

	// Paths must come back expanded and absolute.
	assert.True(t, filepath.IsAbs(cfg.CheckoutDir), "checkout dir should be absolute: %s", cfg.CheckoutDir)
	assert.True(t, filepath.IsAbs(cfg.ModelPath), "model path should be absolute: %s", cfg.ModelPath)
}

// TestLoadJSONCOverrides verifies that a kiln.jsonc file — comments,
// trailing commas and all — overrides only the fields it names.
func TestLoadJSONCOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `{
		// local override for the lab machine
		"envName": "studio",
		"pythonVersion": "3.11",
		"pinnedPackages": ["torch==2.5.0"],
	}`
	path := filepath.Join(dir, "custom.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "studio", cfg.EnvName)
	assert.Equal(t, "3.11", cfg.PythonVersion)
	assert.Equal(t, []string{"torch==2.5.0"}, cfg.PinnedPackages)

	// Fields the file omits keep their defaults.
	assert.Equal(t, "https://github.com/microsoft/TRELLIS.git", cfg.RepoURL)
	assert.Equal(t, "requirements.txt", cfg.Manifest)
}

// TestLoadDefaultFileInCwd verifies the fallback to kiln.jsonc in the
// working directory when no explicit path is given.
func TestLoadDefaultFileInCwd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, DefaultFileName),
		[]byte(`{"envName": "from-cwd"}`), 0644))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-cwd", cfg.EnvName)
}

// TestLoadExplicitMissingFile verifies that an explicitly requested
// config file that does not exist is an error, while the implicit
// default file is allowed to be absent.
func TestLoadExplicitMissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "nope.jsonc"))
	assert.Error(t, err)
}

// TestLoadInvalidJSON verifies that malformed configuration is rejected
// with a parse error rather than silently ignored.
func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"envName": `), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

// TestLoadValidation verifies that semantic validation runs after
// parsing: a bad environment name or python pin fails the load.
func TestLoadValidation(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"bad env name":   `{"envName": "-oops"}`,
		"bad python pin": `{"pythonVersion": "latest"}`,
		"empty repo url": `{"repoURL": ""}`,
		"abs module":     `{"nativeModules": ["/abs/path"]}`,
	}
	for name, content := range cases {
		path := filepath.Join(dir, "case.jsonc")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, err := Load(path)
		assert.Error(t, err, "expected %s to fail validation", name)
	}
}

// TestLoadEnvFileSkipsPythonPin verifies that supplying an
// environment.yml relaxes the pythonVersion requirement — the env file
// carries its own interpreter pin.
func TestLoadEnvFileSkipsPythonPin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "envfile.jsonc")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"envFile": "environment.yml", "pythonVersion": ""}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.EnvFile))
}

// TestTildeExpansion verifies that "~" paths are expanded to the user's
// home directory.
func TestTildeExpansion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tilde.jsonc")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"modelPath": "~/models/u2net.onnx"}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "models", "u2net.onnx"), cfg.ModelPath)
}

// TestManifestPathAndModuleDirs verifies checkout-relative path helpers.
func TestManifestPathAndModuleDirs(t *testing.T) {
	cfg := Default()
	cfg.CheckoutDir = "/opt/studio"

	assert.Equal(t, "/opt/studio/requirements.txt", cfg.ManifestPath())

	dirs := cfg.ModuleDirs()
	require.Len(t, dirs, 2)
	assert.Equal(t, "/opt/studio/extensions/diff-gaussian-rasterization", dirs[0])
	assert.Equal(t, "/opt/studio/extensions/vox2seq", dirs[1])
}

// TestLoadDotenv verifies .env loading: present files populate the
// process environment, absent files are a no-op, and pre-existing
// variables are not overridden.
func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()

	// Absent .env → no error, not loaded.
	loaded, err := LoadDotenv(dir)
	require.NoError(t, err)
	assert.False(t, loaded)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("KILN_TEST_MIRROR=https://mirror.example\nKILN_TEST_PRESET=from-dotenv\n"), 0644))

	// Pre-set variables win over .env entries.
	t.Setenv("KILN_TEST_PRESET", "from-shell")

	loaded, err = LoadDotenv(dir)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "https://mirror.example", os.Getenv("KILN_TEST_MIRROR"))
	assert.Equal(t, "from-shell", os.Getenv("KILN_TEST_PRESET"))

	t.Cleanup(func() { _ = os.Unsetenv("KILN_TEST_MIRROR") })
}
