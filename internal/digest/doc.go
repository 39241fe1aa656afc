// Package digest builds the ticket activity digest.
//
// A build runs strictly in one direction: the Fetcher collects tickets for
// the caller or for each roster identity, the Renderer groups them and picks
// one comment per ticket, the Resolver swaps account mention tokens for
// display names, and Sanitize makes the text safe for template-rendering
// targets. Failures of a single unit are recorded as warnings; only a failed
// self-mode search aborts the build.
package digest
