package engine

import (
	"fmt"
	"strings"
)

// nodeKind enumerates the node types of the orchestration graph.
type nodeKind int

const (
	kindEnd nodeKind = iota
	kindAgent
	kindEnter
	kindSafeTools
	kindSensitiveTools
	kindLeaveSkill
)

// node is the engine's position in the graph: a kind plus the agent boundary
// it belongs to ("" means the dispatcher). It serializes to the checkpoint's
// next-node pointer and parses back on resume.
type node struct {
	kind  nodeKind
	agent string
}

func agentNode(agent string) node     { return node{kind: kindAgent, agent: agent} }
func enterNode(agent string) node     { return node{kind: kindEnter, agent: agent} }
func safeNode(agent string) node      { return node{kind: kindSafeTools, agent: agent} }
func sensitiveNode(agent string) node { return node{kind: kindSensitiveTools, agent: agent} }
func leaveNode(agent string) node     { return node{kind: kindLeaveSkill, agent: agent} }
func endNode() node                   { return node{kind: kindEnd} }

// String renders the stable node name used in checkpoints, logs and the
// approval channel.
func (n node) String() string {
	switch n.kind {
	case kindEnd:
		return ""
	case kindAgent:
		return n.agent
	case kindEnter:
		return "enter:" + n.agent
	case kindSafeTools:
		return "safe_tools:" + n.agent
	case kindSensitiveTools:
		return "sensitive_tools:" + n.agent
	case kindLeaveSkill:
		return "leave_skill:" + n.agent
	default:
		return fmt.Sprintf("unknown:%d", n.kind)
	}
}

// parseNode is the inverse of node.String.
func parseNode(s string) (node, error) {
	if s == "" {
		return endNode(), nil
	}
	prefix, agent, found := strings.Cut(s, ":")
	if !found {
		return agentNode(s), nil
	}
	switch prefix {
	case "enter":
		return enterNode(agent), nil
	case "safe_tools":
		return safeNode(agent), nil
	case "sensitive_tools":
		return sensitiveNode(agent), nil
	case "leave_skill":
		return leaveNode(agent), nil
	default:
		return node{}, fmt.Errorf("engine: unknown node name %q", s)
	}
}
