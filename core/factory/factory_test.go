package factory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source struct {
	Path   string
	MaxAge time.Duration
}

func newFileRegistry(t *testing.T) *Registry[*source] {
	t.Helper()
	reg := NewRegistry[*source]()
	require.NoError(t, reg.Register("file", func(conf map[string]any) (*source, error) {
		var c struct {
			Path   string        `json:"path"`
			MaxAge time.Duration `json:"max_age"`
		}
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, errors.New("path is required")
		}
		return &source{Path: c.Path, MaxAge: c.MaxAge}, nil
	}))
	return reg
}

func TestRegistryCreate(t *testing.T) {
	reg := newFileRegistry(t)
	s, err := reg.Create(ModuleConfig{Type: "file", Conf: map[string]any{"path": "zendure.json", "max_age": "10m"}})
	require.NoError(t, err)
	assert.Equal(t, "zendure.json", s.Path)
	assert.Equal(t, 10*time.Minute, s.MaxAge)
}

func TestRegistryErrors(t *testing.T) {
	reg := newFileRegistry(t)
	assert.Error(t, reg.Register("file", func(map[string]any) (*source, error) { return nil, nil }), "duplicate")
	assert.Error(t, reg.Register("http", nil), "nil factory")

	_, err := reg.Create(ModuleConfig{Type: "mqtt"})
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.ErrorContains(t, err, "[file]")

	_, err = reg.Create(ModuleConfig{Type: "file", Conf: map[string]any{}})
	assert.ErrorContains(t, err, "file: path is required")

	_, err = reg.Create(ModuleConfig{Type: "file", Conf: map[string]any{"path": "x", "pth": "y"}})
	assert.Error(t, err, "unknown keys are rejected")
}

func TestDecodeWeakTypes(t *testing.T) {
	var c struct {
		TimeoutSeconds int  `json:"timeout_seconds"`
		Enabled        bool `json:"enabled"`
	}
	require.NoError(t, Decode(map[string]any{"timeout_seconds": "5", "enabled": "true"}, &c))
	assert.Equal(t, 5, c.TimeoutSeconds)
	assert.True(t, c.Enabled)
}

func TestTypesSorted(t *testing.T) {
	reg := NewRegistry[int]()
	for _, n := range []string{"sqlite", "jsonl", "none"} {
		require.NoError(t, reg.Register(n, func(map[string]any) (int, error) { return 0, nil }))
	}
	assert.Equal(t, []string{"jsonl", "none", "sqlite"}, reg.Types())
}
