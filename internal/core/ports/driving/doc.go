// Package driving holds the use-case interfaces that the CLI, the TUI and the
// MCP server call into. internal/core/services implements them; adapters
// depend only on these interfaces.
package driving
