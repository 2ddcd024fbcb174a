package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultOutDir = "build"
	DefaultTarget = "x86_64-linux-gnu"
)

// ErrInvalidManifest wraps every validation failure of zen.toml.
var ErrInvalidManifest = errors.New("invalid manifest")

type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Run     RunConfig     `toml:"run"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type BuildConfig struct {
	Units  []string `toml:"units"`
	OutDir string   `toml:"out_dir,omitempty"`
	Target string   `toml:"target,omitempty"`
}

type RunConfig struct {
	Main string `toml:"main,omitempty"`
}

// Manifest is a loaded zen.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Load finds zen.toml above startDir and parses it. ok is false when no
// manifest exists.
func Load(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig parses and validates one manifest file, filling defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: %w: unknown key %s", path, ErrInvalidManifest, undecoded[0])
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w: missing [package].name", path, ErrInvalidManifest)
	}
	if len(cfg.Build.Units) == 0 {
		return Config{}, fmt.Errorf("%s: %w: [build].units needs at least one unit", path, ErrInvalidManifest)
	}
	for _, u := range cfg.Build.Units {
		if strings.TrimSpace(u) == "" {
			return Config{}, fmt.Errorf("%s: %w: empty entry in [build].units", path, ErrInvalidManifest)
		}
	}
	if cfg.Build.OutDir == "" {
		cfg.Build.OutDir = DefaultOutDir
	}
	if cfg.Build.Target == "" {
		cfg.Build.Target = DefaultTarget
	}
	if cfg.Run.Main == "" {
		cfg.Run.Main = cfg.Build.Units[0]
	}
	return cfg, nil
}

// UnitPaths resolves the manifest's units against its root.
func (m *Manifest) UnitPaths() []string {
	out := make([]string, len(m.Config.Build.Units))
	for i, u := range m.Config.Build.Units {
		out[i] = m.resolve(u)
	}
	return out
}

// MainPath is the unit executed by `zenc run`.
func (m *Manifest) MainPath() string { return m.resolve(m.Config.Run.Main) }

// OutDir is the absolute output directory.
func (m *Manifest) OutDir() string { return m.resolve(m.Config.Build.OutDir) }

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}

// Skeleton renders a minimal manifest for a new project.
func Skeleton(name string) ([]byte, error) {
	cfg := Config{
		Package: PackageConfig{Name: name},
		Build:   BuildConfig{Units: []string{"main.zast"}, OutDir: DefaultOutDir, Target: DefaultTarget},
		Run:     RunConfig{Main: "main.zast"},
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Init writes a skeleton manifest into dir, refusing to overwrite one.
func Init(dir, name string) (string, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("project already initialized: %s exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	data, err := Skeleton(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
