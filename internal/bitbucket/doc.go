// Package bitbucket implements a thin client for the Bitbucket Server
// pull-request REST API.
//
// Client covers the five operations prflow needs: creating, listing,
// inspecting, checking mergeability of, and merging pull requests. Requests
// authenticate with HTTP Basic credentials or a bearer token resolved through
// CredentialsResolver.
package bitbucket
