package followup

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const promptsEnv = "FOLLOWUP_PROMPTS_YAML"

//go:embed prompts.yaml
var promptsFS embed.FS

type promptSpec struct {
	Temperature float64 `yaml:"temperature"`
	System      string  `yaml:"system"`
	User        string  `yaml:"user"`
}

type promptFile struct {
	Version int                   `yaml:"version"`
	Prompts map[string]promptSpec `yaml:"prompts"`
}

type prompt struct {
	name        string
	temperature float64
	system      string
	user        *template.Template
}

// Render produces the full prompt text sent to the endpoint.
func (p prompt) Render(in any) (string, error) {
	var b bytes.Buffer
	if err := p.user.Execute(&b, in); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", p.name, err)
	}
	user := strings.TrimSpace(b.String())
	if p.system == "" {
		return user, nil
	}
	return strings.TrimSpace(p.system) + "\n\n" + user, nil
}

// Prompts is the compiled catalog, one entry per analysis branch.
type Prompts struct {
	byName map[string]prompt
}

func (c *Prompts) get(name string) (prompt, error) {
	p, ok := c.byName[name]
	if !ok {
		return prompt{}, fmt.Errorf("prompt %q not in catalog", name)
	}
	return p, nil
}

// LoadPrompts reads the catalog from FOLLOWUP_PROMPTS_YAML when set, else the
// embedded copy.
func LoadPrompts() (*Prompts, error) {
	var (
		data []byte
		err  error
	)
	if path := strings.TrimSpace(os.Getenv(promptsEnv)); path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = promptsFS.ReadFile("prompts.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	return ParsePrompts(data)
}

func ParsePrompts(data []byte) (*Prompts, error) {
	var f promptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	c := &Prompts{byName: make(map[string]prompt, len(f.Prompts))}
	for name, spec := range f.Prompts {
		t, err := template.New(name).Option("missingkey=zero").Parse(spec.User)
		if err != nil {
			return nil, fmt.Errorf("%s prompt template parse: %w", name, err)
		}
		c.byName[name] = prompt{name: name, temperature: spec.Temperature, system: spec.System, user: t}
	}
	for _, required := range []string{promptProfile, promptFamily, promptSentiment, promptRecommendations} {
		if _, ok := c.byName[required]; !ok {
			return nil, fmt.Errorf("prompts: missing %q", required)
		}
	}
	return c, nil
}

// MustLoadPrompts is for wiring code that cannot continue without prompts.
func MustLoadPrompts() *Prompts {
	c, err := LoadPrompts()
	if err != nil {
		panic(err)
	}
	return c
}

const (
	promptProfile         = "profile"
	promptFamily          = "family"
	promptSentiment       = "sentiment"
	promptRecommendations = "recommendations"
)
