// Package core defines the shared conversation model threaded through every
// orchestration step: role-based messages composed of a closed set of content
// parts, the append-only Conversation record with its dialog stack, the
// decoded agent Intent variants, and the per-session context.
package core
