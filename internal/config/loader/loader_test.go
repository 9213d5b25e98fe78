package loader

import (
	"io/fs"
	"reflect"
	"strings"
	"testing"
	"time"

	"gitlab.com/tozd/go/errors"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0o644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/idhue.toml", `
[palette]
size = 12

[languages.go]
identifier = '\b[A-Za-z_]\w*'
tags = ["", "type"]
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/idhue.toml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	palette, ok := config["palette"].(map[string]any)
	if !ok {
		t.Fatalf("palette section missing: %#v", config)
	}
	if palette["size"] != int64(12) {
		t.Errorf("palette.size = %#v, want int64(12)", palette["size"])
	}

	langs := config["languages"].(map[string]any)
	goLang := langs["go"].(map[string]any)
	if goLang["identifier"] != `\b[A-Za-z_]\w*` {
		t.Errorf("identifier = %q", goLang["identifier"])
	}
	if !reflect.DeepEqual(goLang["tags"], []any{"", "type"}) {
		t.Errorf("tags = %#v", goLang["tags"])
	}
}

func TestTOMLLoader_Missing(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/none.toml").Load()
	if err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
	if config != nil {
		t.Errorf("Load() = %v, want nil", config)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[palette]\nsize = = 3\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("Path = %q", perr.Path)
	}
	if perr.Line == 0 {
		t.Error("Line not reported")
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[theme]\nname = \"light\"\n"))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if config["theme"].(map[string]any)["name"] != "light" {
		t.Errorf("theme.name = %v", config["theme"])
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/idhue.yaml", `
palette:
  size: 6
  minLuminance: 0.4
languages:
  python:
    identifier: '[A-Za-z_]\w*'
    extensions: [".py"]
`)

	config, err := NewYAMLLoaderWithFS(memfs, "/idhue.yaml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	palette := config["palette"].(map[string]any)
	if palette["size"] != 6 {
		t.Errorf("palette.size = %#v, want 6", palette["size"])
	}
	if palette["minLuminance"] != 0.4 {
		t.Errorf("palette.minLuminance = %#v", palette["minLuminance"])
	}
	py := config["languages"].(map[string]any)["python"].(map[string]any)
	if !reflect.DeepEqual(py["extensions"], []any{".py"}) {
		t.Errorf("extensions = %#v", py["extensions"])
	}
}

func TestYAMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.yml", "palette:\n  size: [1,\n")

	_, err := NewYAMLLoaderWithFS(memfs, "/bad.yml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    any
		wantErr bool
	}{
		{"a.toml", &TOMLLoader{}, false},
		{"a.TOML", &TOMLLoader{}, false},
		{"a.yaml", &YAMLLoader{}, false},
		{"a.yml", &YAMLLoader{}, false},
		{"a.json", nil, true},
		{"noext", nil, true},
	}
	for _, tt := range tests {
		l, err := ForPath(nil, tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("ForPath(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForPath(%q) error = %v", tt.path, err)
			continue
		}
		if reflect.TypeOf(l) != reflect.TypeOf(tt.want) {
			t.Errorf("ForPath(%q) = %T, want %T", tt.path, l, tt.want)
		}
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"palette": map[string]any{"size": 10, "grid": 8},
		"theme":   map[string]any{"name": "default-dark"},
	}
	src := map[string]any{
		"palette": map[string]any{"size": 4},
		"logging": map[string]any{"level": "debug"},
	}

	got := DeepMerge(dst, src)
	want := map[string]any{
		"palette": map[string]any{"size": 4, "grid": 8},
		"theme":   map[string]any{"name": "default-dark"},
		"logging": map[string]any{"level": "debug"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeepMerge() = %#v, want %#v", got, want)
	}

	// Merged maps are copies, not aliases of src.
	got["logging"].(map[string]any)["level"] = "warn"
	if src["logging"].(map[string]any)["level"] != "debug" {
		t.Error("DeepMerge aliased a source map")
	}
}

func TestClone(t *testing.T) {
	src := map[string]any{
		"a": map[string]any{"b": []any{"x", map[string]any{"c": 1}}},
	}
	dst := Clone(src)
	if !reflect.DeepEqual(src, dst) {
		t.Fatalf("Clone() = %#v", dst)
	}
	dst["a"].(map[string]any)["b"].([]any)[0] = "y"
	if src["a"].(map[string]any)["b"].([]any)[0] != "x" {
		t.Error("Clone shares slices with the source")
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) != nil")
	}
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	l.environ = func() []string {
		return []string{
			"IDHUE_PALETTE_SIZE=1",
			"IDHUE_REFRESH_IDLE_DELAY=250ms",
			"IDHUE_LOG_LEVEL=debug",
			"IDHUE_THEME=monokai",
			"IDHUE_LOGGING_CONSOLE=off",
			"IDHUE_PALETTE_MIN_LUMINANCE=0.4",
			"IDHUE_CONFIG=/etc/idhue.toml",
			"HOME=/root",
		}
	}

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := map[string]any{
		"palette": map[string]any{"size": int64(1), "minLuminance": 0.4},
		"refresh": map[string]any{"idleDelay": "250ms"},
		"logging": map[string]any{"level": "debug", "console": false},
		"theme":   map[string]any{"name": "monokai"},
	}
	if !reflect.DeepEqual(config, want) {
		t.Errorf("Load() = %#v, want %#v", config, want)
	}
}

func TestEnvToPath(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	tests := []struct {
		env  string
		want string
	}{
		{"IDHUE_PALETTE_SIZE", "palette.size"},
		{"IDHUE_REFRESH_IDLE_DELAY", "refresh.idleDelay"},
		{"IDHUE_PALETTE_GRID_RESOLUTION", "palette.gridResolution"},
		{"IDHUE_THEME", "theme"},
		{"IDHUE_", ""},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.want {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"0", int64(0)},
		{"42", int64(42)},
		{"true", true},
		{"No", false},
		{"0.5", 0.5},
		{"5s", "5s"},
		{`["", "type"]`, []any{"", "type"}},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
