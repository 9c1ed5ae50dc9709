package knowledge

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.json
var defaultData embed.FS

// File base names of the four tables. Each may be stored as .json, .yaml or .yml.
const (
	MoodsFile     = "mood"
	ResponsesFile = "responses"
	TriggersFile  = "triggers"
	SolutionsFile = "solutions"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Default loads the knowledge base shipped with the binary.
func Default() (*KnowledgeBase, []string, error) {
	return LoadFS(defaultData, "data")
}

// LoadDir loads the four tables from a directory on disk.
func LoadDir(dir string) (*KnowledgeBase, []string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve knowledge base dir: %w", err)
	}
	return LoadFS(os.DirFS(abs), ".")
}

// LoadFS loads and validates the four tables found under dir in fsys.
func LoadFS(fsys fs.FS, dir string) (*KnowledgeBase, []string, error) {
	moodsNode, err := readTable(fsys, dir, MoodsFile)
	if err != nil {
		return nil, nil, err
	}
	responsesNode, err := readTable(fsys, dir, ResponsesFile)
	if err != nil {
		return nil, nil, err
	}
	triggersNode, err := readTable(fsys, dir, TriggersFile)
	if err != nil {
		return nil, nil, err
	}
	solutionsNode, err := readTable(fsys, dir, SolutionsFile)
	if err != nil {
		return nil, nil, err
	}

	kb := &KnowledgeBase{}

	if kb.Moods, err = decodeCategories(moodsNode); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", MoodsFile, err)
	}
	if kb.Triggers, err = decodeCategories(triggersNode); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", TriggersFile, err)
	}
	if err = responsesNode.Decode(&kb.Responses); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ResponsesFile, err)
	}
	if kb.Solutions, err = decodeSolutions(solutionsNode); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", SolutionsFile, err)
	}

	warnings, err := Validate(kb)
	if err != nil {
		return nil, warnings, err
	}
	return kb, warnings, nil
}

// readTable finds the first existing variant of name and parses it into a YAML document node.
// JSON input is compacted first so tab indentation never reaches the YAML scanner.
func readTable(fsys fs.FS, dir, name string) (*yaml.Node, error) {
	for _, ext := range extensions {
		p := path.Join(dir, name+ext)
		raw, err := fs.ReadFile(fsys, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}

		if ext == ".json" {
			var buf bytes.Buffer
			if err := json.Compact(&buf, raw); err != nil {
				return nil, fmt.Errorf("parse %s: %w", p, err)
			}
			raw = buf.Bytes()
		}

		var doc yaml.Node
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
			return nil, fmt.Errorf("parse %s: empty document", p)
		}
		return doc.Content[0], nil
	}
	return nil, fmt.Errorf("knowledge table %q not found in %s", name, dir)
}

// decodeCategories walks a mapping node pair by pair so the file order survives.
func decodeCategories(node *yaml.Node) ([]Category, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected an object of category -> keyword list", node.Line)
	}

	cats := make([]Category, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var keywords []string
		if err := value.Decode(&keywords); err != nil {
			return nil, fmt.Errorf("category %q: %w", key.Value, err)
		}
		cats = append(cats, Category{Name: key.Value, Keywords: keywords})
	}
	return cats, nil
}

func decodeSolutions(node *yaml.Node) (Solutions, error) {
	var raw map[string]map[string]map[string][]string
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}

	out := make(Solutions, len(raw))
	for mood, byIntensity := range raw {
		out[mood] = make(map[Intensity]map[string][]string, len(byIntensity))
		for key, bucket := range byIntensity {
			intensity, ok := ParseIntensity(key)
			if !ok {
				return nil, fmt.Errorf("%w: mood %q has unknown intensity %q", ErrInvalidKnowledgeBase, mood, key)
			}
			out[mood][intensity] = bucket
		}
	}
	return out, nil
}
