// Package config loads the wasihost configuration file and builds the
// runtime it describes.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/tetratelabs/wazero"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "~/.wasihost/config.yaml"
	defaultCachePath  = "~/.wasihost/cache"
	defaultLogLevel   = "warning"
)

// ConfigPath is the path to the wasihost configuration.
var ConfigPath Path = defaultConfigPath

func init() {
	if path := os.Getenv("WASIHOSTCONFIG"); path != "" {
		ConfigPath = Path(path)
	}
}

// Strings is the representation of the strings that the host exchanges with
// guests.
type Strings string

const (
	UTF8    Strings = "utf8"
	Bytes   Strings = "bytes"
	CString Strings = "cstring"
	OSPath  Strings = "ospath"
)

func (s Strings) String() string {
	return string(s)
}

func (s *Strings) Set(value string) error {
	switch Strings(value) {
	case UTF8, Bytes, CString, OSPath:
		*s = Strings(value)
		return nil
	}
	return fmt.Errorf("unsupported string representation: %q (not one of %s, %s, %s, %s)", value, UTF8, Bytes, CString, OSPath)
}

func (s *Strings) UnmarshalText(b []byte) error {
	return s.Set(string(b))
}

// Load opens and reads the configuration file.
func Load() (*Config, error) {
	r, _, err := Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Read(r)
}

// Open opens the configuration file. When the file does not exist, the
// returned reader produces the default configuration.
func Open() (io.ReadCloser, string, error) {
	path, err := ConfigPath.Resolve()
	if err != nil {
		return nil, path, err
	}
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
		b, _ := yaml.Marshal(Default())
		return io.NopCloser(bytes.NewReader(b)), path, nil
	}
	return f, path, nil
}

// Read reads and parses configuration. Unknown keys are rejected.
func Read(r io.Reader) (*Config, error) {
	c := Default()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return c, nil
		}
		return nil, err
	}
	return c, nil
}

// Default is the default configuration.
func Default() *Config {
	c := new(Config)
	c.Cache.Location = NullableValue[Path](defaultCachePath)
	c.Log.Level = defaultLogLevel
	c.Strings.Representation = UTF8
	return c
}

// Config is the wasihost configuration.
type Config struct {
	Cache Cache `json:"cache" yaml:"cache"`
	Log struct {
		Level string `json:"level" yaml:"level"`
	} `json:"log" yaml:"log"`
	Strings struct {
		Representation Strings `json:"representation" yaml:"representation"`
	} `json:"strings" yaml:"strings"`
}

// Cache configures the compilation cache. A null location disables it.
type Cache struct {
	Location Nullable[Path] `json:"location" yaml:"location"`
}

// UnmarshalYAML decodes the cache section key by key. yaml.v3 does not call
// unmarshalers on null values, so the section resets its nullable fields
// itself when they are explicitly set to null.
func (c *Cache) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: cache must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "location":
			if err := c.Location.UnmarshalYAML(value); err != nil {
				return err
			}
		default:
			return fmt.Errorf("line %d: field %s not found in cache section", key.Line, key.Value)
		}
	}
	return nil
}

// NewRuntime constructs a wazero.Runtime configured according to c. Closing
// the runtime also closes its compilation cache.
func (c *Config) NewRuntime(ctx context.Context) (wazero.Runtime, error) {
	config := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)

	var cache wazero.CompilationCache
	if location, ok := c.Cache.Location.Value(); ok {
		path, err := location.Resolve()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cache location: %w", err)
		}
		cache, err = createCacheDirectory(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		config = config.WithCompilationCache(cache)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, config)
	if cache != nil {
		runtime = &runtimeWithCompilationCache{
			Runtime: runtime,
			cache:   cache,
		}
	}
	return runtime, nil
}

type runtimeWithCompilationCache struct {
	wazero.Runtime
	cache wazero.CompilationCache
}

func (r *runtimeWithCompilationCache) Close(ctx context.Context) error {
	defer r.cache.Close(ctx)
	return r.Runtime.Close(ctx)
}

// CreateDirectory creates the directory at path and its parents.
func CreateDirectory(path string) error {
	if err := os.MkdirAll(path, 0777); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return err
		}
	}
	return nil
}

func createCacheDirectory(path string) (wazero.CompilationCache, error) {
	if err := CreateDirectory(path); err != nil {
		return nil, err
	}
	return wazero.NewCompilationCacheWithDir(path)
}

