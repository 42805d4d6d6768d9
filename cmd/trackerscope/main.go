// Package main provides the entry point for the trackerscope CLI.
//
// Trackerscope summarizes the third-party tracker networks a web page
// loads, grades the page's privacy posture, and maintains a cross-site
// tracker-network leaderboard.
//
// Usage:
//
//	trackerscope summarize <url>
//	trackerscope leaderboard
//
// See --help for all available options.
package main

// main is the entry point for trackerscope.
func main() {
	Execute()
}
