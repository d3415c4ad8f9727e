// Package runtime provides the execution context for uprebase commands.
//
// It encapsulates shared dependencies needed by actions, such as the
// repository handle, logger, and resolved settings.
package runtime
