package builder

import (
	"encoding/json"
	"sort"
	"strings"
)

// JSONGrammar is the raw document format accepted by FromJSONGrammar: a
// mapping from rule name to a sequence of alternatives, each alternative a
// sequence of string tokens.
//
//	{ "<rule>": [[ "tok1", "<sub>", "<!module.x>" ], [ "other" ]] }
type JSONGrammar map[string][][]string

// ParseJSONGrammar decodes a JSON grammar document.
func ParseJSONGrammar(data []byte) (JSONGrammar, error) {
	var g JSONGrammar
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, &MalformedGrammarError{Reason: err.Error()}
	}
	return g, nil
}

// parseBuiltinRef recognizes a "<!module.rule>" token, returning its module
// and rule parts. It also accepts a bare "module.rule" form with neither
// delimiter, for builder.Rule() idents built programmatically from already
// parsed components.
func parseBuiltinRef(tok string) (module, rule string, ok bool) {
	inner := tok
	if strings.HasPrefix(tok, "<!") && strings.HasSuffix(tok, ">") {
		inner = tok[2 : len(tok)-1]
	} else if !strings.Contains(tok, ".") {
		return "", "", false
	}
	dot := strings.Index(inner, ".")
	if dot < 0 {
		return "", "", false
	}
	return inner[:dot], inner[dot+1:], true
}

// classifyToken implements §6's token classification: a builtin reference
// ("<!module.rule>", module.rule containing exactly one "."), a rule
// reference ("<rule>"), or a literal terminal.
func classifyToken(tok string) (Ident, error) {
	if strings.HasPrefix(tok, "<!") && strings.HasSuffix(tok, ">") {
		inner := tok[2 : len(tok)-1]
		if strings.Count(inner, ".") != 1 {
			return Ident{}, &MalformedGrammarError{Reason: "builtin reference " + tok + " must contain exactly one '.'"}
		}
		dot := strings.Index(inner, ".")
		return ModuleRule(inner[:dot], inner[dot+1:]), nil
	}
	if strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") {
		return Rule(tok), nil
	}
	return Data([]byte(tok)), nil
}

// FromJSONGrammar converts a parsed JSON grammar document into a Builder.
// If start is non-empty it is added as the sole entry point; otherwise the
// caller is responsible for adding one before Construct/Build (typically
// the lexically first rule name, to match JSON object iteration having no
// defined order).
func FromJSONGrammar(doc JSONGrammar, start string) (*Builder, error) {
	b := New()
	if start != "" {
		b.AddEntrypoint(start)
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, alt := range doc[name] {
			idents := make([]Ident, 0, len(alt))
			for _, tok := range alt {
				ident, err := classifyToken(tok)
				if err != nil {
					return nil, err
				}
				idents = append(idents, ident)
			}
			b.AddRule(name, idents)
		}
	}

	return b, nil
}
