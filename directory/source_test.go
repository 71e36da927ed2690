package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestSourceLoadsAtConstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts_map.json")
	be.Err(t, os.WriteFile(path, []byte(`{"Jane Doe": {"phones": ["+16502530000"], "emails": []}}`), 0o644), nil)

	src := NewSource(path, nil)
	be.Equal(t, src.Path(), path)
	be.Equal(t, src.Directory().Len(), 1)

	// Later edits are invisible until an explicit reload.
	be.Err(t, os.WriteFile(path, []byte(`{}`), 0o644), nil)
	be.Equal(t, src.Directory().Len(), 1)
}

func TestSourceRetriesOnceWhenInitiallyEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts_map.json")

	src := NewSource(path, nil)

	be.Err(t, os.WriteFile(path, []byte(`{"Jane Doe": {"phones": ["+16502530000"], "emails": []}}`), 0o644), nil)
	be.Equal(t, src.Directory().Len(), 1)

	be.Err(t, os.WriteFile(path, []byte(`{"A": {"phones": ["1"]}, "B": {"phones": ["2"]}}`), 0o644), nil)
	be.Equal(t, src.Directory().Len(), 1)
}

func TestSourceMalformedFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts_map.json")
	be.Err(t, os.WriteFile(path, []byte(`not json`), 0o644), nil)

	src := NewSource(path, nil)
	be.Equal(t, src.Directory().Len(), 0)
}

func TestSourceReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts_map.json")
	be.Err(t, os.WriteFile(path, []byte(`{"Jane Doe": {"phones": ["+16502530000"], "emails": []}}`), 0o644), nil)
	src := NewSource(path, nil)

	be.Err(t, os.WriteFile(path, []byte(`{"A": {"phones": ["1"]}, "B": {"phones": ["2"]}}`), 0o644), nil)
	d, err := src.Reload()
	be.Err(t, err, nil)
	be.Equal(t, d.Len(), 2)
	be.Equal(t, src.Directory().Len(), 2)

	be.Err(t, os.WriteFile(path, []byte(`{"broken"`), 0o644), nil)
	d, err = src.Reload()
	be.Err(t, err, ErrLoad)
	be.Equal(t, d.Len(), 2)
	be.Equal(t, src.Directory().Len(), 2)
}

func TestFixedSource(t *testing.T) {
	src := Fixed(New([]Entry{{Name: "Jane Doe", Phones: []string{"+16502530000"}}}))
	be.Equal(t, src.Path(), "")
	be.Equal(t, src.Directory().Len(), 1)

	_, err := src.Reload()
	be.True(t, err != nil)
	be.Equal(t, src.Directory().Len(), 1)

	be.Equal(t, Fixed(nil).Directory().Len(), 0)
}
