package tool

import "github.com/seybold/bankdesk/core"

// Set is the fixed, named collection of tools bound to one assistant,
// partitioned into safe (auto-executed) and sensitive (human approval
// required) tools. Registration order is preserved for model binding.
type Set struct {
	name      string
	tools     map[string]Tool
	sensitive map[string]bool
	order     []string
}

// NewSet constructs an empty tool set with the given name.
func NewSet(name string) *Set {
	return &Set{name: name, tools: make(map[string]Tool), sensitive: make(map[string]bool)}
}

// Name returns the set's name.
func (s *Set) Name() string { return s.name }

// Add registers safe tools: read-only or reversible operations that execute
// without human approval.
func (s *Set) Add(tools ...Tool) *Set {
	for _, t := range tools {
		s.register(t, false)
	}
	return s
}

// AddSensitive registers sensitive tools: state-changing operations that
// require human approval before execution.
func (s *Set) AddSensitive(tools ...Tool) *Set {
	for _, t := range tools {
		s.register(t, true)
	}
	return s
}

func (s *Set) register(t Tool, sensitive bool) {
	if _, exists := s.tools[t.Name()]; !exists {
		s.order = append(s.order, t.Name())
	}
	s.tools[t.Name()] = t
	s.sensitive[t.Name()] = sensitive
}

// Get retrieves a tool by name.
func (s *Set) Get(name string) (Tool, bool) {
	t, ok := s.tools[name]
	return t, ok
}

// List returns the registered tools in registration order.
func (s *Set) List() []Tool {
	tools := make([]Tool, 0, len(s.order))
	for _, name := range s.order {
		tools = append(tools, s.tools[name])
	}
	return tools
}

// IsSensitive reports whether the named tool requires human approval.
// Unknown names are not sensitive; the executor will fail them in-band.
func (s *Set) IsSensitive(name string) bool { return s.sensitive[name] }

// BatchSensitive reports whether a batch of tool calls must take the
// approval path: one sensitive call taints the whole batch, so no part of it
// is ever auto-executed.
func (s *Set) BatchSensitive(calls []core.ToolCall) bool {
	for _, c := range calls {
		if s.IsSensitive(c.Name) {
			return true
		}
	}
	return false
}
