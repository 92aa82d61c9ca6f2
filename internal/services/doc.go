// Package services implements the network clients used by spotdash.
//
// # Spotify
//
// [SpotifyService] wraps the Spotify Web API. Authentication uses OAuth2; the [oauth2.Client] refreshes expired
// tokens using the refresh token. Requests are paced by a rate limiter configured through [SpotifyService.SetRateLimit].
//
// # Assist
//
// [AssistService] posts the user's prompt to an OpenAI-compatible chat completions endpoint in JSON mode and decodes
// a list of [models.Candidate]. [Resolver] then resolves each candidate with a limit-1 field-filtered catalog search,
// consulting an optional [ResolutionCacher] first.
//
// # Gateway
//
// [Gateway] combines both so UI components can depend on a single value while declaring the narrow interface they use.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token installed
//   - [shared.ErrTokenExpired] : 401 from the API, reauthorization needed
//   - [shared.ErrNotFound] : 404 from the API
//   - [shared.ErrAPIRequest] : any other non-2xx status
//   - [shared.ErrMalformedResponse] : undecodable body
//
// Context cancellation is returned unwrapped so callers can test it with errors.Is.
package services
