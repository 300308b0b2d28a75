// Package urls builds Home Assistant endpoint URLs from the configured
// base URL.
//
// Keeping the scheme mapping (http to ws) and path joining in one place
// means the rest of the code passes around the user's base URL untouched.
package urls
