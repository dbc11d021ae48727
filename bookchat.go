// Package bookchat provides a chat client for a book Q&A backend.
// A user types a question, the client forwards it to the backend over HTTP
// and renders the answer together with source citations and a confidence
// score.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, slog/, tui/).
package bookchat

// SessionID is sent with every question. It is a fixed literal shared by all
// clients, not a per-user session.
const SessionID = "docusaurus-chat-session"
