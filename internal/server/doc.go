// Package server runs the short-lived HTTP listener used by `spotdash auth`.
//
// # Router
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] wraps
// [http.ServeMux] with method filtering. [Middleware] is applied in reverse order, so the first
// one added is the outermost. [Logging] and [Recover] are the stock middleware.
//
// # OAuth callback
//
// [CallbackHandler] completes the authorization code flow: it checks the state parameter,
// exchanges the code for a token and reports exactly one [OAuthResult] on its channel. Later hits
// are rejected so a replayed redirect cannot mint a second token.
//
// [Start] binds the listener before returning, so the browser can be opened immediately after.
package server
