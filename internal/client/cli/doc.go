// Package cli provides the interactive tube-v command-line client.
//
// It wires configuration, the local session store, the API client and a
// REPL. A saved session is resumed on start; a background watcher pings the
// server and the prompt shows whether it is reachable.
//
// Commands:
//   - register, login, logout
//   - me, refresh, passwd
//   - help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
