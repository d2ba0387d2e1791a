package bank

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"digital.vasic.lessons/pkg/lesson"
)

// BankFile is the on-disk structure of a content bank file.
type BankFile struct {
	Version  string          `json:"version" yaml:"version"`
	Name     string          `json:"name" yaml:"name"`
	Modules  []lesson.Module `json:"modules" yaml:"modules"`
	Lessons  []lesson.Lesson `json:"lessons" yaml:"lessons"`
	Metadata map[string]any  `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// supportedExt reports whether a file name has a bank extension.
func supportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// decodeFile parses data according to the extension of name.
// Unknown extensions are parsed as YAML, which accepts JSON too.
func decodeFile(name string, data []byte) (BankFile, error) {
	var file BankFile
	var err error
	if strings.EqualFold(filepath.Ext(name), ".json") {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return BankFile{}, fmt.Errorf("parse bank file %s: %w", name, err)
	}
	return file, nil
}
