package program

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/implicits/internal/diagnostics"
)

// Unit is a compilation unit manifest: declarations grouped by package,
// and the call sites whose implicit arguments must be resolved.
type Unit struct {
	Name     string        `yaml:"name"`
	Packages []PackageSpec `yaml:"packages"`
	Calls    []CallSpec    `yaml:"calls"`

	Path string `yaml:"-"`
}

type PackageSpec struct {
	Name      string     `yaml:"name"`
	Types     []TypeSpec `yaml:"types"`
	Functions []FuncSpec `yaml:"functions"`

	Pos diagnostics.Pos `yaml:"-"`
}

type TypeSpec struct {
	Name        string      `yaml:"name"`
	Kind        string      `yaml:"kind"` // class (default), object or interface
	Instance    bool        `yaml:"instance"`
	TypeParams  []string    `yaml:"type_params"`
	Supertypes  []string    `yaml:"supertypes"`
	Constructor []ParamSpec `yaml:"constructor"`
	Companion   *TypeSpec   `yaml:"companion"`
	Members     []TypeSpec  `yaml:"members"`

	Pos diagnostics.Pos `yaml:"-"`
}

type ParamSpec struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Implicit bool   `yaml:"implicit"`
}

type FuncSpec struct {
	Name       string      `yaml:"name"`
	TypeParams []string    `yaml:"type_params"`
	Params     []ParamSpec `yaml:"params"`
	// Functions are lexically nested functions and lambdas.
	Functions []FuncSpec `yaml:"functions"`

	Pos diagnostics.Pos `yaml:"-"`
}

type CallSpec struct {
	// In is the fully qualified name of the calling function; empty for
	// top-level calls.
	In       string            `yaml:"in"`
	Callee   string            `yaml:"callee"`
	TypeArgs map[string]string `yaml:"type_args"`
	Explicit []string          `yaml:"explicit"`

	Pos diagnostics.Pos `yaml:"-"`
}

// LoadUnit reads and parses a manifest file.
func LoadUnit(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit: %w", err)
	}
	return ParseUnit(data, path)
}

// ParseUnit parses manifest data. Path is recorded for diagnostics.
func ParseUnit(data []byte, path string) (*Unit, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse unit: %w", err)
	}
	unit := &Unit{Path: path}
	if len(root.Content) == 0 {
		return unit, nil
	}
	doc := root.Content[0]
	if err := doc.Decode(unit); err != nil {
		return nil, fmt.Errorf("failed to parse unit: %w", err)
	}
	unit.Path = path
	if unit.Name == "" {
		unit.Name = path
	}
	annotatePositions(unit, doc)
	return unit, nil
}

func annotatePositions(unit *Unit, doc *yaml.Node) {
	for i, n := range sequence(doc, "packages") {
		if i >= len(unit.Packages) {
			break
		}
		p := &unit.Packages[i]
		p.Pos = posOf(n)
		for j, tn := range sequence(n, "types") {
			if j < len(p.Types) {
				annotateType(&p.Types[j], tn)
			}
		}
		annotateFuncs(p.Functions, n)
	}
	for i, n := range sequence(doc, "calls") {
		if i < len(unit.Calls) {
			unit.Calls[i].Pos = posOf(n)
		}
	}
}

func annotateType(t *TypeSpec, n *yaml.Node) {
	t.Pos = posOf(n)
	if t.Companion != nil {
		if cn := mappingValue(n, "companion"); cn != nil {
			annotateType(t.Companion, cn)
		}
	}
	for i, mn := range sequence(n, "members") {
		if i < len(t.Members) {
			annotateType(&t.Members[i], mn)
		}
	}
}

func annotateFuncs(funcs []FuncSpec, parent *yaml.Node) {
	for i, fn := range sequence(parent, "functions") {
		if i >= len(funcs) {
			break
		}
		funcs[i].Pos = posOf(fn)
		annotateFuncs(funcs[i].Functions, fn)
	}
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func sequence(n *yaml.Node, key string) []*yaml.Node {
	v := mappingValue(n, key)
	if v == nil || v.Kind != yaml.SequenceNode {
		return nil
	}
	return v.Content
}

func posOf(n *yaml.Node) diagnostics.Pos {
	return diagnostics.Pos{Line: n.Line, Column: n.Column}
}
