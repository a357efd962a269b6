// Floof is a little development orchestrator. A floof.yaml file describes
// named tasks, each a sequence of operations: run a command, watch file trees
// and rerun on change, serve an HTTP reverse proxy that reloads the browser,
// and so on.
//
// # Conceptual Overview
//
//  1. You call [Load] to parse a floof.yaml into a [Config].
//  2. You combine the config with a [UI] to get a [Run].
//  3. You start the run with a task name. The run executes the task's
//     operations in a tree of execution contexts: each context inherits
//     values (working directory, the enclosing HTTP server, the
//     triggered-by-change flag) from its ancestors, and canceling a context
//     cancels everything running beneath it.
//
// Operations are composed sequentially by default; `concurrently` runs its
// children in parallel, and `watch` reruns its body whenever a watched file
// changes, canceling the in-flight body first.
package floof
