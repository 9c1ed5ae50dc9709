package knowledge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrInvalidKnowledgeBase wraps every structural validation failure.
var ErrInvalidKnowledgeBase = errors.New("invalid knowledge base")

// Validate prunes categories that can never match and checks the remaining structure.
// Pruned categories and moods without solutions are reported as warnings.
func Validate(kb *KnowledgeBase) ([]string, error) {
	var warnings []string

	kb.Moods, warnings = pruneEmpty("mood", kb.Moods, warnings)
	kb.Triggers, warnings = pruneEmpty("trigger", kb.Triggers, warnings)

	if err := validate.Struct(kb); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return warnings, fmt.Errorf("%w: %s", ErrInvalidKnowledgeBase, strings.Join(fields, "; "))
		}
		return warnings, fmt.Errorf("%w: %v", ErrInvalidKnowledgeBase, err)
	}

	if err := checkUnique("mood", kb.Moods); err != nil {
		return warnings, err
	}
	if err := checkUnique("trigger", kb.Triggers); err != nil {
		return warnings, err
	}

	for _, mood := range kb.MoodNames() {
		if len(kb.Solutions[mood]) == 0 {
			warnings = append(warnings, fmt.Sprintf("mood %q has no solutions; conversations will fall back to listening", mood))
		}
	}

	if len(kb.UnknownResponses()) == 0 {
		warnings = append(warnings, fmt.Sprintf("responses has no %q entry; built-in fallback will be used", UnknownResponsesKey))
	}

	return warnings, nil
}

func pruneEmpty(kind string, cats []Category, warnings []string) ([]Category, []string) {
	kept := make([]Category, 0, len(cats))
	for _, c := range cats {
		if len(c.Keywords) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s category %q has no keywords and was ignored", kind, c.Name))
			continue
		}
		kept = append(kept, c)
	}
	return kept, warnings
}

func checkUnique(kind string, cats []Category) error {
	seen := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate %s category %q", ErrInvalidKnowledgeBase, kind, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
