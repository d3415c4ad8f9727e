// Package actions holds the logic behind each uprebase command.
//
// Each subpackage implements one command against a runtime.Context, which
// carries the opened repository, the logger and the resolved settings. The
// cli package parses flags and hands off to an action; actions never read
// flags or the environment themselves.
package actions
