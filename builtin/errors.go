package builtin

import "fmt"

// UnknownModuleError reports a reference to a builtin module name that
// isn't one of the five bundled sub-grammars.
type UnknownModuleError struct {
	Module string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("builtin: unknown builtin module %q", e.Module)
}

// UnknownRuleError reports spec §7's UnknownBuiltinRule: a valid module
// that does not define the requested rule.
type UnknownRuleError struct {
	Prefix string
	Target string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("builtin: unknown builtin rule %s%s", e.Prefix, e.Target)
}
