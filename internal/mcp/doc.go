// Package mcp exposes habitlens analysis as MCP tools so a conversational
// agent can ask for patterns, predictions and prompts about a user.
//
// The server runs over stdio. Logs must go to stderr while it is running.
package mcp
