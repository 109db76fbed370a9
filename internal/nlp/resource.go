package nlp

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed arabic.yaml
var arabicResource []byte

// ErrEmptyResource is returned for a resource without stop words.
var ErrEmptyResource = errors.New("language resource has no stop words")

// Resource is the vocabulary a Language is built from.
type Resource struct {
	Name                string   `yaml:"name"`
	StopWords           []string `yaml:"stop_words"`
	SentenceTerminators []string `yaml:"sentence_terminators"`
}

// ParseResource decodes a YAML language resource.
func ParseResource(data []byte) (Resource, error) {
	var res Resource
	if err := yaml.Unmarshal(data, &res); err != nil {
		return Resource{}, fmt.Errorf("decode language resource: %w", err)
	}
	if len(res.StopWords) == 0 {
		return Resource{}, ErrEmptyResource
	}
	if strings.TrimSpace(res.Name) == "" {
		res.Name = "custom"
	}
	return res, nil
}

// Load builds a Language from a YAML resource file.
func Load(path string) (*Language, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read language resource: %w", err)
	}
	res, err := ParseResource(data)
	if err != nil {
		return nil, err
	}
	return New(res), nil
}

var (
	arabicOnce sync.Once
	arabic     *Language
)

// Arabic returns the process-wide Arabic language handle, built from the
// embedded resource on first use. The handle is read-only.
func Arabic() *Language {
	arabicOnce.Do(func() {
		res, err := ParseResource(arabicResource)
		if err != nil {
			panic(fmt.Sprintf("embedded arabic resource: %v", err))
		}
		arabic = New(res)
	})
	return arabic
}

// Open returns the Language at path, or the embedded Arabic one when path
// is empty.
func Open(path string) (*Language, error) {
	if strings.TrimSpace(path) == "" {
		return Arabic(), nil
	}
	return Load(path)
}
