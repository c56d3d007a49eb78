package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/newthinker/tradelab/internal/core"
	"gopkg.in/yaml.v3"
)

// Expand resolves glob patterns (including **) into a sorted, duplicate
// free list of files. A pattern that matches nothing is an error.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// fileRecord is the on-disk shape of a record. Datetime stays a string so
// any layout core.ParseTimestamp accepts can be used.
type fileRecord struct {
	Datetime string  `yaml:"datetime" json:"datetime"`
	Open     float64 `yaml:"open" json:"open"`
	High     float64 `yaml:"high" json:"high"`
	Low      float64 `yaml:"low" json:"low"`
	Close    float64 `yaml:"close" json:"close"`
	Volume   int64   `yaml:"volume" json:"volume"`
}

// fileDocument allows records to sit under a top-level "records" key.
type fileDocument struct {
	Records []fileRecord `yaml:"records" json:"records"`
}

// LoadFile reads records from a .json, .yaml or .yml file. The file holds
// either a list of records or a mapping with a "records" list.
func LoadFile(path string) ([]core.TickerInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var recs []fileRecord
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		recs, err = decodeJSON(data)
	case ".yaml", ".yml":
		recs, err = decodeYAML(data)
	default:
		return nil, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("%s: unsupported file type %q", path, ext))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := make([]core.TickerInput, len(recs))
	for i, r := range recs {
		in := core.TickerInput{
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
		if r.Datetime != "" {
			ts, err := core.ParseTimestamp(r.Datetime)
			if err != nil {
				return nil, fmt.Errorf("%s: record %d: %w", path, i, err)
			}
			in.Datetime = ts
		}
		out[i] = in
	}
	return out, nil
}

func decodeJSON(data []byte) ([]fileRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var doc fileDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Records, nil
	}
	var recs []fileRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func decodeYAML(data []byte) ([]fileRecord, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.MappingNode {
		var doc fileDocument
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Records, nil
	}
	var recs []fileRecord
	if err := root.Decode(&recs); err != nil {
		return nil, err
	}
	return recs, nil
}
