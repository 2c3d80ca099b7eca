// Package auth holds the auth context: who is logged in, with which role, and the bearer
// token that authorizes their API calls.
//
// A [Session] is the read-only view every front end consults to gate UI (role "User" or
// "Admin"). A [Store] persists sessions through the session repository: one "cli" session for
// the command line and terminal UI, and one "web" session per browser cookie.
//
// Tokens are peeked, never verified: the API verifies them. [PeekClaims] reads the expiry and,
// when the login response carried none, the role.
package auth
