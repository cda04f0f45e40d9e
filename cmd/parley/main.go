// Parley is a rule-based conversational engine.
//
// Rules pair an input pattern (with optional that and topic patterns) with
// a response template. Each user turn is split into sentences, every
// sentence is matched against the rule graph, and the matched templates
// are evaluated against the user's session.
//
// Usage:
//
//	# Chat on stdin using ./parley.yaml
//	parley chat
//
//	# One-shot reply for a named session
//	parley chat --session alice --message "Hello there"
//
//	# Validate rule files
//	parley lint rules/
//
//	# List or prune stored sessions
//	parley sessions list --format json
//	parley sessions prune --idle-ttl 24h
//
//	# Show version information
//	parley version
package main

import "os"

func main() {
	os.Exit(Execute())
}
