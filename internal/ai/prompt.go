package ai

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/review.yaml
var defaultPrompt []byte

// PromptSpec is the YAML description of the review prompt.
type PromptSpec struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

// LoadPrompt reads a prompt spec from path, or the built-in one when path is
// empty.
func LoadPrompt(path string) (PromptSpec, error) {
	b := defaultPrompt
	if path != "" {
		var err error
		if b, err = os.ReadFile(path); err != nil {
			return PromptSpec{}, fmt.Errorf("read prompt file: %w", err)
		}
	}
	var spec PromptSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return PromptSpec{}, fmt.Errorf("parse prompt %q: %w", path, err)
	}
	if strings.TrimSpace(spec.User) == "" {
		return PromptSpec{}, fmt.Errorf("prompt %q has no user template", path)
	}
	if spec.Style.Temperature <= 0 {
		spec.Style.Temperature = 0.2
	}
	if spec.Style.MaxTokens <= 0 {
		spec.Style.MaxTokens = 1200
	}
	return spec, nil
}

// Render fills the user template for one file.
func (p PromptSpec) Render(filename, content string) string {
	out := strings.ReplaceAll(p.User, "{{.Filename}}", filename)
	return strings.ReplaceAll(out, "{{.Content}}", content)
}
