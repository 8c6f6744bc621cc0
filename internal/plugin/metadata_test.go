package plugin

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plua "github.com/dshills/driad/internal/plugin/lua"
)

func TestDecodeMetadata(t *testing.T) {
	md, err := DecodeMetadata([]byte(validManifest))
	require.NoError(t, err)

	assert.Equal(t, "stars", md.Name)
	assert.Equal(t, []string{"Ada", "Lin"}, md.Authors)
	assert.Equal(t, Version{Major: 1, Minor: 0, Patch: 2}, md.Version)
}

func TestDecodeMetadataIgnoresUnknownKeys(t *testing.T) {
	md, err := DecodeMetadata([]byte(validManifest + "\nhomepage = \"https://example.com\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "stars", md.Name)
}

func TestDecodeMetadataMalformed(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		contains string
	}{
		{"missing version", "name = \"a\"\nauthors = [\"x\"]\n", "version is required"},
		{"missing name", "authors = [\"x\"]\nversion = \"1.0.0\"\n", "name is required"},
		{"missing authors", "name = \"a\"\nversion = \"1.0.0\"\n", "authors is required"},
		{"empty authors", "name = \"a\"\nauthors = []\nversion = \"1.0.0\"\n", "authors"},
		{"empty author", "name = \"a\"\nauthors = [\"\"]\nversion = \"1.0.0\"\n", "authors"},
		{"numeric version", "name = \"a\"\nauthors = [\"x\"]\nversion = 1\n", ""},
		{"short version", "name = \"a\"\nauthors = [\"x\"]\nversion = \"1.2\"\n", ""},
		{"not toml", "name = ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMetadata([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrManifestMalformed)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestDecodeMetadataBadVersionKeepsCause(t *testing.T) {
	_, err := DecodeMetadata([]byte("name = \"a\"\nauthors = [\"x\"]\nversion = \"1.x.3\"\n"))
	assert.ErrorIs(t, err, ErrManifestMalformed)
	assert.ErrorIs(t, err, ErrMalformedVersion)
}

func TestLoadMetadata(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "stars", validManifest, "")

	md, err := LoadMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, "stars", md.Name)
}

func TestLoadMetadataAlternateNames(t *testing.T) {
	for _, name := range []string{"meta.toml", "DATA.TOML", "Metadata.Toml"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, name), validManifest)

			md, err := LoadMetadata(dir)
			require.NoError(t, err)
			assert.Equal(t, "stars", md.Name)
		})
	}
}

func TestLoadMetadataFirstMatchWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data.toml"), manifestFor("first"))
	writeFile(t, filepath.Join(dir, "meta.toml"), manifestFor("second"))

	md, err := LoadMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, "first", md.Name)
}

func TestLoadMetadataNotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.toml"), validManifest)

	_, err := LoadMetadata(dir)
	assert.ErrorIs(t, err, ErrManifestNotFound)

	_, err = LoadMetadata(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrManifestNotFound)
}

func TestLoadMetadataUnreadable(t *testing.T) {
	dir := t.TempDir()
	danglingLink("META.toml")(t, dir)

	_, err := LoadMetadata(dir)
	assert.ErrorIs(t, err, ErrManifestUnreadable)
	assert.Contains(t, err.Error(), "META.toml")

	engine := plua.NewState()
	defer engine.Close()
	_, err = LoadFromPath(dir, engine)
	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	assert.ErrorIs(t, err, ErrManifestUnreadable)
}

func TestLoadMetadataMalformedNamesFile(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "bad", "name = \"a\"\n", "")

	_, err := LoadMetadata(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrManifestMalformed))
	assert.Contains(t, err.Error(), "metadata.toml")
}

func TestMetadataString(t *testing.T) {
	md := Metadata{
		Name:    "stars",
		Authors: []string{"Ada", "Lin"},
		Version: Version{Major: 1, Patch: 2},
	}

	want := strings.Join([]string{
		"Name: stars",
		"Authors:",
		" - Ada",
		" - Lin",
		"Version 1.0.2",
	}, "\n")
	assert.Equal(t, want, md.String())
}

func TestMetadataClone(t *testing.T) {
	md := Metadata{Name: "a", Authors: []string{"x"}}
	clone := md.Clone()
	clone.Authors[0] = "y"

	assert.Equal(t, "x", md.Authors[0])
}
