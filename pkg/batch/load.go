package batch

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/embedded"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/constants"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
)

// Parse decodes one batch document. The source names the document in
// errors and becomes the batch name when the document declares none.
func Parse(source string, data []byte) (*Batch, error) {
	var b Batch
	if err := yaml.UnmarshalWithOptions(data, &b, yaml.Strict()); err != nil {
		return nil, errors.NewParseError("yaml", source, yaml.FormatError(err, false, false), err)
	}
	b.Source = source
	if strings.TrimSpace(b.Name) == "" {
		b.Name = stem(source)
	}
	if b.Name == "" {
		return nil, errors.NewParseError("yaml", source, "batch has no name", nil)
	}
	if b.Generation < 0 {
		return nil, errors.NewParseError("yaml", source, "generation must not be negative", nil)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}

// LoadFile reads and parses a single batch file.
func LoadFile(file string) (*Batch, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WrapIO("read", file, err)
	}
	return Parse(filepath.Base(file), data)
}

// LoadDir loads every batch file in a directory, in batch order.
func LoadDir(dir string) ([]*Batch, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.WrapIO("stat", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError("batch_dir", dir, "not a directory")
	}
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS loads every batch file under root in fsys, in batch order.
func LoadFS(fsys fs.FS, root string) ([]*Batch, error) {
	var batches []*Batch
	names := make(map[string]string)

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WrapIO("walk", p, err)
		}
		if d.IsDir() || !isBatchFile(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return errors.WrapIO("read", p, err)
		}
		b, err := Parse(path.Base(p), data)
		if err != nil {
			return err
		}
		if other, dup := names[b.Name]; dup {
			return errors.NewValidationError("name", b.Name, "batch name is declared by both "+other+" and "+b.Source)
		}
		names[b.Name] = b.Source
		batches = append(batches, b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	Sort(batches)
	return batches, nil
}

// Embedded returns the batches compiled into the binary.
func Embedded() ([]*Batch, error) {
	return LoadFS(embedded.FS, embedded.Dir)
}

func isBatchFile(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == constants.BatchFileExt || ext == constants.BatchFileAltExt
}

func stem(file string) string {
	base := path.Base(filepath.ToSlash(file))
	return strings.TrimSuffix(base, path.Ext(base))
}
