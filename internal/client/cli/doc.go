// Package cli provides the interactive pdfier command-line client.
//
// It wires configuration, the local database, the backend client, the
// session manager and the services, then runs a REPL. Session
// initialization runs in the background right after start; the prompt
// shows "initializing" until it settles.
//
// Key features:
//   - Login / Signup with OTP / password recovery / Logout
//   - A file selection (add, files, remove, up, down, clear)
//   - PDF tools: merge, compress, protect, download
//   - Dashboard and chat: recent, conversations, newconv, docs, upload, messages, ask
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
