package plan

import "strings"

// DefaultMaxIterations bounds the scheduler loop when no explicit limit is
// configured.
const DefaultMaxIterations = 10

// Context holds the live variable bindings and iteration counter for one
// in-flight plan execution. It is created when execution starts and discarded
// when it ends; it never outlives a single execution attempt.
type Context struct {
	Variables     map[string]string
	CurrentStep   *Step
	Iteration     int
	MaxIterations int
}

func NewContext(maxIterations int) *Context {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Context{
		Variables:     make(map[string]string),
		MaxIterations: maxIterations,
	}
}

// SetVariable binds a value under the given name. Last write wins.
func (c *Context) SetVariable(name, value string) {
	c.Variables[name] = value
}

func (c *Context) Variable(name string) (string, bool) {
	v, ok := c.Variables[name]
	return v, ok
}

// Substitute resolves the context's bindings into text.
func (c *Context) Substitute(text string) string {
	return Substitute(text, c.Variables)
}

// Substitute replaces every occurrence of #name# in text with the bound value
// for each variable. Replacement is a single pass per variable; placeholders
// with no matching binding are left unchanged, and newly inserted text is not
// re-substituted recursively.
func Substitute(text string, variables map[string]string) string {
	for name, value := range variables {
		text = strings.ReplaceAll(text, "#"+name+"#", value)
	}
	return text
}
