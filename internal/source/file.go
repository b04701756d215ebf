package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"jobpay-engine/internal/domain"
)

// FileSource reads postings from a JSON or YAML file on every fetch.
type FileSource struct {
	name string
	path string
}

func NewFile(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

func (s *FileSource) Name() string { return s.name }

func (s *FileSource) FetchAll(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, err := ReadDocuments(s.path)
	if err != nil {
		return nil, err
	}
	return RecordsFromDocuments(docs), nil
}

// ReadDocuments decodes the posting documents in path. Files ending in .json
// are read as JSON, everything else as YAML.
func ReadDocuments(path string) ([]map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var v any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(b, &v)
	} else {
		err = yaml.Unmarshal(b, &v)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	docs, err := documentsOf(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}
