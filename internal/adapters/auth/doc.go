// Package auth provides ports.TokenProvider implementations: a fixed token,
// an OAuth2 client credentials flow, and a token file that is reloaded when
// it changes on disk.
package auth
