// Package scene loads a YAML "scene" file — axiom, rule source, ignore
// list, iteration count, seed, and token mode — into the pieces
// cmd/lgen needs to drive a full rewrite.
package scene

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/aledsdavies/lgen/pkgs/ruleparser"
	"github.com/aledsdavies/lgen/pkgs/token"
)

//go:embed schema.json
var schemaJSON []byte

var schema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	const url = "schema://scene.json"
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("scene: invalid embedded schema: %v", err))
	}
	s, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("scene: embedded schema does not compile: %v", err))
	}
	return s
}

// raw mirrors schema.json's shape for yaml.v3 decoding.
type raw struct {
	Axiom           string   `yaml:"axiom"`
	Rules           []string `yaml:"rules"`
	RulesFile       string   `yaml:"rules-file"`
	Ignore          []string `yaml:"ignore"`
	Iterations      int      `yaml:"iterations"`
	Seed            *uint32  `yaml:"seed"`
	Mode            string   `yaml:"mode"`
	MinSceneVersion string   `yaml:"min-scene-version"`
}

var knownKeys = []string{
	"axiom", "rules", "rules-file", "ignore", "iterations", "seed", "mode", "min-scene-version",
}

// Scene is a fully loaded, ready-to-run description: an axiom, a rule
// table and ignore set, an iteration count, and an optional seed.
type Scene struct {
	Axiom      string
	Table      *ruleparser.Loader
	Iterations int
	Seed       *uint32
	Mode       token.Mode
}

// Load reads, schema-validates, and decodes a scene document from data.
// buildVersion is the tool's own version (e.g. "v1.4.0"), checked against
// an optional min-scene-version field via semver.Compare; pass "" (or any
// value that is not a semantic version, such as "dev") to skip that check.
func Load(data []byte, buildVersion string) (*Scene, error) {
	var generic map[string]interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("scene: invalid YAML: %w", err)
	}

	if msg := unknownKeyHint(generic); msg != "" {
		return nil, fmt.Errorf("scene: %s", msg)
	}

	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("scene: schema validation failed: %w", err)
	}

	var r raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("scene: invalid YAML: %w", err)
	}

	if r.MinSceneVersion != "" && semver.IsValid(normalizeVersion(buildVersion)) {
		want, have := normalizeVersion(r.MinSceneVersion), normalizeVersion(buildVersion)
		if semver.Compare(have, want) < 0 {
			return nil, fmt.Errorf("scene: requires lgen >= %s, this build is %s", r.MinSceneVersion, buildVersion)
		}
	}

	mode := token.DefaultMode
	if r.Mode == "long" {
		mode = token.LongMode
	}

	lines, err := ruleLines(r)
	if err != nil {
		return nil, err
	}

	loader := ruleparser.NewLoader(mode)
	if err := loader.LoadLines(lines); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	for _, name := range r.Ignore {
		loader.Ignore.Add(token.Identifier(name))
	}

	return &Scene{
		Axiom:      r.Axiom,
		Table:      loader,
		Iterations: r.Iterations,
		Seed:       r.Seed,
		Mode:       mode,
	}, nil
}

// LoadFile reads path and loads it as a scene document.
func LoadFile(path string, buildVersion string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return Load(data, buildVersion)
}

func ruleLines(r raw) ([]string, error) {
	if r.RulesFile != "" && len(r.Rules) > 0 {
		return nil, fmt.Errorf("scene: rules and rules-file are mutually exclusive")
	}
	if r.RulesFile != "" {
		data, err := os.ReadFile(r.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("scene: reading rules-file: %w", err)
		}
		return strings.Split(string(data), "\n"), nil
	}
	return r.Rules, nil
}

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// unknownKeyHint returns a "did you mean" message for the first
// unrecognised top-level key in generic, or "" if every key is known.
func unknownKeyHint(generic map[string]interface{}) string {
	var unknown []string
	for k := range generic {
		if !isKnownKey(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return ""
	}
	sort.Strings(unknown)
	bad := unknown[0]

	ranks := fuzzy.RankFind(bad, knownKeys)
	if len(ranks) == 0 {
		return fmt.Sprintf("unknown field %q", bad)
	}
	sort.Sort(ranks)
	return fmt.Sprintf("unknown field %q (did you mean %q?)", bad, ranks[0].Target)
}

func isKnownKey(k string) bool {
	for _, known := range knownKeys {
		if k == known {
			return true
		}
	}
	return false
}
