package builder

import "fmt"

// UnresolvedReferenceError reports an identifier token that names neither a
// rule in the grammar under construction nor a known builtin.
type UnresolvedReferenceError struct {
	Name string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("builder: unresolved reference %q", e.Name)
}

// DuplicateRuleError reports a script rule added under a name that already
// names an existing rule.
type DuplicateRuleError struct {
	Name string
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("builder: rule %q already defined, cannot add script rule over it", e.Name)
}

// NoEntryPointError reports that construction produced no entry points, or
// that a requested entry point name is absent from the rule set.
type NoEntryPointError struct {
	Name string // empty when no entry points were requested at all
}

func (e *NoEntryPointError) Error() string {
	if e.Name == "" {
		return "builder: grammar has no entry points"
	}
	return fmt.Sprintf("builder: entry point %q is not part of the grammar", e.Name)
}

// MalformedGrammarError reports a JSON parse failure or an ill-formed
// "<!...>" token (missing its "." separator).
type MalformedGrammarError struct {
	Reason string
}

func (e *MalformedGrammarError) Error() string {
	return fmt.Sprintf("builder: malformed grammar: %s", e.Reason)
}
