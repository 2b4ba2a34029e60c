package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stealthrocket/wasihost/internal/assert"
	"gopkg.in/yaml.v3"
)

var configTests = tests{
	"show the config command help with the short option": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "config", "-h")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost config ")
		assert.Equal(t, stderr, "")
	},

	"the configuration file is printed as is": func(t *testing.T) {
		b, err := os.ReadFile(os.Getenv("WASIHOSTCONFIG"))
		assert.OK(t, err)

		stdout, stderr, err := wasihost(t, "config")
		assert.OK(t, err)
		assert.Equal(t, stdout, string(b))
		assert.Equal(t, stderr, "")
	},

	"the configuration is printed in json": func(t *testing.T) {
		stdout, _, err := wasihost(t, "config", "-o", "json")
		assert.OK(t, err)

		var c struct {
			Cache struct {
				Location *string `json:"location"`
			} `json:"cache"`
			Log struct {
				Level string `json:"level"`
			} `json:"log"`
			Strings struct {
				Representation string `json:"representation"`
			} `json:"strings"`
		}
		assert.OK(t, json.Unmarshal([]byte(stdout), &c))
		assert.NotEqual(t, c.Cache.Location, nil)
		assert.Equal(t, *c.Cache.Location, os.Getenv("WASIHOST_TEST_CACHE"))
		assert.Equal(t, c.Log.Level, "warning")
		assert.Equal(t, c.Strings.Representation, "utf8")
	},

	"the configuration is printed in yaml": func(t *testing.T) {
		stdout, _, err := wasihost(t, "config", "--output", "yaml")
		assert.OK(t, err)

		var c map[string]map[string]any
		assert.OK(t, yaml.Unmarshal([]byte(stdout), &c))
		assert.Equal(t, c["log"]["level"], any("warning"))
		assert.Equal(t, c["strings"]["representation"], any("utf8"))
	},

	"a missing configuration file prints the default configuration": func(t *testing.T) {
		t.Setenv("WASIHOSTCONFIG", filepath.Join(t.TempDir(), "config.yaml"))
		stdout, _, err := wasihost(t, "config")
		assert.OK(t, err)
		if !strings.Contains(stdout, "location: ~/.wasihost/cache\n") {
			t.Errorf("default cache location missing from the configuration:\n%s", stdout)
		}
	},

	"the config option overrides the environment": func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.yaml")
		assert.OK(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0666))

		stdout, _, err := wasihost(t, "config", "-c", path)
		assert.OK(t, err)
		assert.Equal(t, stdout, "log:\n  level: debug\n")
	},

	"unknown configuration keys are an error": func(t *testing.T) {
		assert.OK(t, os.WriteFile(os.Getenv("WASIHOSTCONFIG"), []byte("registry:\n  location: /tmp\n"), 0666))

		_, stderr, err := wasihost(t, "config", "-o", "yaml")
		assert.ExitError(t, err, 1)
		assert.HasPrefix(t, stderr, "ERR: wasihost config: ")
	},

	"editing requires an editor": func(t *testing.T) {
		t.Setenv("EDITOR", "")
		_, stderr, err := wasihost(t, "config", "--edit")
		assert.ExitError(t, err, 1)
		assert.Equal(t, stderr, "ERR: wasihost config: $EDITOR is not set\n")
	},

	"editing writes the configuration file": func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new", "config.yaml")
		t.Setenv("WASIHOSTCONFIG", path)
		t.Setenv("EDITOR", "true")
		t.Setenv("SHELL", "/bin/sh")

		_, _, err := wasihost(t, "config", "--edit")
		assert.OK(t, err)

		b, err := os.ReadFile(path)
		assert.OK(t, err)
		if !strings.Contains(string(b), "representation: utf8") {
			t.Errorf("default configuration was not written:\n%s", b)
		}
	},

	"passing arguments to the command causes an error": func(t *testing.T) {
		_, _, err := wasihost(t, "config", "show")
		assert.ExitError(t, err, 2)
	},
}
