// Package github provides a minimal GitHub REST API client for posting the
// markdown gap report as a pull-request comment.
//
// The token comes from GITHUB_TOKEN and the API base from GITHUB_API_URL.
// A report carries a hidden marker, so re-running against the same pull
// request edits the earlier comment instead of adding another.
package github
