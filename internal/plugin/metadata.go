package plugin

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Metadata describes a plugin package.
type Metadata struct {
	Name    string   `toml:"name" yaml:"name" json:"name"`
	Authors []string `toml:"authors" yaml:"authors" json:"authors"`
	Version Version  `toml:"version" yaml:"version" json:"version"`
}

// manifest is the on-disk shape. Version stays a string so a missing field
// can be told apart from "0.0.0".
type manifest struct {
	Name    string   `toml:"name" validate:"required"`
	Authors []string `toml:"authors" validate:"required,min=1,dive,required"`
	Version string   `toml:"version" validate:"required"`
}

// validate is a package-level singleton; validators cache struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// LoadMetadata finds and decodes the manifest in dir.
func LoadMetadata(dir string) (Metadata, error) {
	path, err := findFile(dir, ManifestNames...)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrManifestNotFound, err)
	}
	if path == "" {
		return Metadata{}, fmt.Errorf("%w in %s", ErrManifestNotFound, dir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrManifestUnreadable, err)
	}

	md, err := DecodeMetadata(data)
	if err != nil {
		return Metadata{}, fmt.Errorf("%s: %w", path, err)
	}
	return md, nil
}

// DecodeMetadata decodes and validates manifest TOML.
func DecodeMetadata(data []byte) (Metadata, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrManifestMalformed, err)
	}

	if err := validate.Struct(&m); err != nil {
		return Metadata{}, fmt.Errorf("%w: %s", ErrManifestMalformed, describeValidation(err))
	}

	v, err := ParseVersion(m.Version)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrManifestMalformed, err)
	}

	return Metadata{
		Name:    m.Name,
		Authors: m.Authors,
		Version: v,
	}, nil
}

// describeValidation flattens validator errors into one line.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s entry", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// String renders the metadata as a short multi-line description.
func (m Metadata) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nAuthors:\n", m.Name)
	for _, author := range m.Authors {
		fmt.Fprintf(&b, " - %s\n", author)
	}
	fmt.Fprintf(&b, "Version %s", m.Version)
	return b.String()
}

// Clone creates a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	clone := m
	if m.Authors != nil {
		clone.Authors = make([]string, len(m.Authors))
		copy(clone.Authors, m.Authors)
	}
	return clone
}
