package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/tidwall/jsonc"

	"github.com/hollowpine/kiln/internal/model"
)

// DefaultFileName is the configuration file kiln looks for in the current
// directory when no --config flag is given. The file is optional: when it
// is absent, the built-in defaults are used unchanged.
const DefaultFileName = "kiln.jsonc"

// Built-in defaults. These are the fixed constants of the manual setup
// procedure kiln replaces; kiln with no configuration file reproduces
// it exactly.
const (
	defaultEnvName       = "trellis"
	defaultPythonVersion = "3.10"
	defaultRepoURL       = "https://github.com/microsoft/TRELLIS.git"
	defaultCheckoutDir   = "~/kiln/TRELLIS"
	defaultModelURL      = "https://github.com/danielgatis/rembg/releases/download/v0.0.0/u2net.onnx"
	defaultModelPath     = "~/.u2net/u2net.onnx"
	defaultIndexURL      = "https://download.pytorch.org/whl/cu121"
	defaultManifest      = "requirements.txt"
	defaultEntrypoint    = "app.py"
	defaultMirrorVar     = "HF_ENDPOINT"
	defaultMirrorURL     = "https://hf-mirror.com"
)

// Config holds every setting the provisioning pipeline needs. All fields
// are optional in kiln.jsonc; unset fields keep their defaults. Paths are
// stored expanded (no "~") after Load returns.
type Config struct {
	// EnvName is the conda environment name to create and install into.
	EnvName string `json:"envName"`

	// PythonVersion is the interpreter pin for environment creation
	// (MAJOR.MINOR or MAJOR.MINOR.PATCH). Ignored when EnvFile is set,
	// because the environment.yml carries its own pin.
	PythonVersion string `json:"pythonVersion"`

	// EnvFile is an optional conda environment.yml. When set, the
	// environment is created from the file instead of from
	// EnvName + PythonVersion.
	EnvFile string `json:"envFile,omitempty"`

	// RepoURL is the git remote of the studio application to clone.
	RepoURL string `json:"repoURL"`

	// CheckoutDir is the directory the application is cloned into.
	CheckoutDir string `json:"checkoutDir"`

	// ModelURL is the download location of the pretrained
	// background-removal model.
	ModelURL string `json:"modelURL"`

	// ModelPath is where the model asset is stored on disk.
	ModelPath string `json:"modelPath"`

	// PinnedPackages are the exact package==version specifiers installed
	// from IndexURL before the manifest. Defaults to the PyTorch triple.
	PinnedPackages []string `json:"pinnedPackages"`

	// IndexURL is the package index the pinned packages come from.
	IndexURL string `json:"indexURL"`

	// Manifest is the dependency manifest file name, resolved relative
	// to CheckoutDir. A missing manifest is a warning, not an error.
	Manifest string `json:"manifest"`

	// NativeModules are checkout-relative subdirectories containing
	// native extension modules, built strictly in order.
	NativeModules []string `json:"nativeModules"`

	// Entrypoint is the application script launched from CheckoutDir.
	Entrypoint string `json:"entrypoint"`

	// LaunchArgs are the fixed arguments passed to the entrypoint.
	LaunchArgs []string `json:"launchArgs"`

	// MirrorVar and MirrorURL define the single environment variable
	// exported for kiln and all of its child processes (the model hub
	// mirror endpoint).
	MirrorVar string `json:"mirrorVar"`
	MirrorURL string `json:"mirrorURL"`
}

// Default returns a Config populated with the built-in defaults.
// Paths are not yet expanded; Load handles that.
func Default() *Config {
	return &Config{
		EnvName:       defaultEnvName,
		PythonVersion: defaultPythonVersion,
		RepoURL:       defaultRepoURL,
		CheckoutDir:   defaultCheckoutDir,
		ModelURL:      defaultModelURL,
		ModelPath:     defaultModelPath,
		PinnedPackages: []string{
			"torch==2.4.0",
			"torchvision==0.19.0",
			"torchaudio==2.4.0",
		},
		IndexURL: defaultIndexURL,
		Manifest: defaultManifest,
		NativeModules: []string{
			"extensions/diff-gaussian-rasterization",
			"extensions/vox2seq",
		},
		Entrypoint: defaultEntrypoint,
		LaunchArgs: []string{"--listen"},
		MirrorVar:  defaultMirrorVar,
		MirrorURL:  defaultMirrorURL,
	}
}

// Load reads the configuration from the given path, falling back to
// DefaultFileName in the current directory when path is empty.
//
// Resolution rules:
//   - explicit path that does not exist → error (the user asked for it)
//   - default path that does not exist → built-in defaults, no error
//   - file present → parsed as JSONC over the defaults, so any field the
//     file omits keeps its default value
//
// After parsing, "~" prefixes in CheckoutDir, ModelPath, and EnvFile are
// expanded and the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// jsonc.ToJSON strips comments and trailing commas, producing
		// plain JSON that encoding/json can parse. Unmarshalling into
		// the pre-filled defaults struct means absent fields keep their
		// default values, while present fields (including slices)
		// replace them wholesale.
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to parse %s", path), err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file in the working directory — run with defaults.
	default:
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotenv loads a .env file from the given directory into the process
// environment, if one exists. Variables already set in the environment
// win over .env entries (godotenv does not override by default), so the
// operator's shell always has the last word.
//
// Returns true if a .env file was found and loaded.
func LoadDotenv(dir string) (bool, error) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		// Absent .env is the normal case, not an error.
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to load %s", path), err)
	}
	return true, nil
}

// expandPaths resolves "~" prefixes in all path-valued fields and makes
// them absolute. Doing this once at load time means every downstream
// component works with concrete absolute paths.
func (c *Config) expandPaths() error {
	for _, field := range []*string{&c.CheckoutDir, &c.ModelPath, &c.EnvFile} {
		if *field == "" {
			continue
		}
		expanded, err := homedir.Expand(*field)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to expand path %q", *field), err)
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to resolve path %q", expanded), err)
		}
		*field = abs
	}
	return nil
}

// Validate checks the configuration for values the pipeline cannot work
// with. It is called by Load, so a *Config obtained from Load is always
// valid.
func (c *Config) Validate() error {
	if err := model.ValidateEnvName(c.EnvName); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid configuration", err)
	}
	// The python pin only matters when no environment.yml is supplied;
	// the env file carries its own interpreter pin.
	if c.EnvFile == "" {
		if err := model.ValidatePythonVersion(c.PythonVersion); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "invalid configuration", err)
		}
	}
	if c.RepoURL == "" {
		return model.NewCLIError(model.ExitGeneralError, "invalid configuration: repoURL must not be empty")
	}
	if c.CheckoutDir == "" {
		return model.NewCLIError(model.ExitGeneralError, "invalid configuration: checkoutDir must not be empty")
	}
	if c.ModelURL == "" {
		return model.NewCLIError(model.ExitGeneralError, "invalid configuration: modelURL must not be empty")
	}
	if c.ModelPath == "" {
		return model.NewCLIError(model.ExitGeneralError, "invalid configuration: modelPath must not be empty")
	}
	if c.Entrypoint == "" {
		return model.NewCLIError(model.ExitGeneralError, "invalid configuration: entrypoint must not be empty")
	}
	for _, mod := range c.NativeModules {
		if filepath.IsAbs(mod) {
			return model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("invalid configuration: native module %q must be a checkout-relative path", mod))
		}
	}
	return nil
}

// ManifestPath returns the absolute path of the dependency manifest
// inside the checkout.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.CheckoutDir, c.Manifest)
}

// ModuleDirs returns the absolute paths of the native extension module
// directories, preserving the configured build order.
func (c *Config) ModuleDirs() []string {
	dirs := make([]string, 0, len(c.NativeModules))
	for _, mod := range c.NativeModules {
		dirs = append(dirs, filepath.Join(c.CheckoutDir, mod))
	}
	return dirs
}
