// Package catalog holds the static reference data shown in the side panel:
// agents, knowledge bases, preset questions and display logos.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

const defaultLogo = "🤖"

type Agent struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	Model            string   `yaml:"model"`
	ConnectedKB      string   `yaml:"connected_kb"`
	KnowledgeSources []string `yaml:"knowledge_sources"`
}

// RoutingOnly reports whether the agent has no knowledge sources of its own.
func (a Agent) RoutingOnly() bool {
	return len(a.KnowledgeSources) == 0
}

type KnowledgeBase struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	RetrievalMode    string   `yaml:"retrieval_mode"`
	Model            string   `yaml:"model"`
	KnowledgeSources []string `yaml:"knowledge_sources"`
}

// Question is a preset quick-action query.
type Question struct {
	Text  string `yaml:"text"`
	Agent string `yaml:"agent"`
}

type document struct {
	Agents         []Agent           `yaml:"agents"`
	KnowledgeBases []KnowledgeBase   `yaml:"knowledge_bases"`
	Questions      []Question        `yaml:"questions"`
	Logos          map[string]string `yaml:"logos"`
}

// Catalog is immutable after Parse. Accessors return copies.
type Catalog struct {
	agents    []Agent
	kbs       []KnowledgeBase
	questions []Question
	logos     map[string]string
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		cat, err := Parse(embedded)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
		}
		defaultCat = cat
	})
	return defaultCat
}

// Parse decodes and validates a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Agents) == 0 {
		return nil, errors.New("catalog has no agents")
	}
	kbIDs := make(map[string]struct{}, len(doc.KnowledgeBases))
	for _, kb := range doc.KnowledgeBases {
		id := strings.TrimSpace(kb.ID)
		if id == "" {
			return nil, errors.New("knowledge base with empty id")
		}
		if _, dup := kbIDs[id]; dup {
			return nil, fmt.Errorf("duplicate knowledge base %q", id)
		}
		kbIDs[id] = struct{}{}
	}
	agentIDs := make(map[string]struct{}, len(doc.Agents))
	for _, agent := range doc.Agents {
		id := strings.TrimSpace(agent.ID)
		if id == "" {
			return nil, errors.New("agent with empty id")
		}
		if _, dup := agentIDs[id]; dup {
			return nil, fmt.Errorf("duplicate agent %q", id)
		}
		agentIDs[id] = struct{}{}
		if agent.ConnectedKB == "" {
			continue
		}
		if _, ok := kbIDs[agent.ConnectedKB]; !ok {
			return nil, fmt.Errorf("agent %q references unknown knowledge base %q", id, agent.ConnectedKB)
		}
	}
	if doc.Logos == nil {
		doc.Logos = map[string]string{}
	}
	return &Catalog{
		agents:    doc.Agents,
		kbs:       doc.KnowledgeBases,
		questions: doc.Questions,
		logos:     doc.Logos,
	}, nil
}

func (c *Catalog) Agents() []Agent {
	out := make([]Agent, len(c.agents))
	copy(out, c.agents)
	return out
}

func (c *Catalog) KnowledgeBases() []KnowledgeBase {
	out := make([]KnowledgeBase, len(c.kbs))
	copy(out, c.kbs)
	return out
}

func (c *Catalog) Questions() []Question {
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

func (c *Catalog) Agent(id string) (Agent, bool) {
	for _, agent := range c.agents {
		if agent.ID == id {
			return agent, true
		}
	}
	return Agent{}, false
}

func (c *Catalog) KnowledgeBase(id string) (KnowledgeBase, bool) {
	for _, kb := range c.kbs {
		if kb.ID == id {
			return kb, true
		}
	}
	return KnowledgeBase{}, false
}

// Logo returns the display glyph for an agent or knowledge base identifier.
func (c *Catalog) Logo(id string) string {
	if logo, ok := c.logos[id]; ok && logo != "" {
		return logo
	}
	return defaultLogo
}
