// Package engine implements the dialogue orchestration graph: a dispatcher
// assistant routes each user turn, hand-off tools descend into specialist
// assistants tracked on a dialog stack, and sensitive tool calls suspend the
// session behind a human approval gate. Every node transition is
// checkpointed, so a suspended or interrupted session resumes with an
// identical continuation.
package engine
