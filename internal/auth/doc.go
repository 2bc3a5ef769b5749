// Package auth guards the web UI.
//
// Two modes are supported:
//   - "none": every request is let through (default)
//   - "local": a single shared password, checked against a bcrypt hash, opens
//     a session cookie
//
// # Configuration
//
//	AUTH_MODE=local
//	AUTH_PASSWORD_HASH=<bcrypt hash>   # see "wordbook hash-password"
//	AUTH_SESSION_SECRET=<hex>          # CSRF key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_SECURE_COOKIES=true
//
// Sessions are always enabled because flash notices live in them, even when
// no password is required.
package auth
