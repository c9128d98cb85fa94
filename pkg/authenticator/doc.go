// Package authenticator implements the pluggable credential validation chain.
//
// Backends implement the Authenticator interface and are registered by name
// with a Resolver when the service starts. A Registry instantiates the
// configured backends of a chain type on first use and caches them until the
// configuration is reloaded. The Executor walks a chain and returns the first
// successful result.
//
// # Chain Types
//
// There are two chain types, each read from its own configuration group:
//
//   - Local (authenticators): every backend is tried with a username and password.
//   - External (external_authenticators): only the backend whose name matches
//     the caller's discriminator is tried, with the request parameters and cookies.
//
// # Backend Results
//
// Validate has three outcomes:
//
//	data, nil                  // valid credentials
//	nil, nil                   // declined, try the next backend
//	nil, &AuthenticatorError{} // operational failure, logged, try the next backend
//
// Any other error is returned to the caller unchanged.
//
// # Name Resolution
//
// A configuration entry names its backend either explicitly with a
// "module.Symbol" class reference or with a short name. Short names are
// looked up under their legacy name first and their current name second:
//
//	legacy:  casino_core-authenticator-<short_name>  <ShortName>
//	current: casino-<short_name>_authenticator       <ShortName>Authenticator
package authenticator
