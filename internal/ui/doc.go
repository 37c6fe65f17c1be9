// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI drives a single sync run across two views:
//  1. [SyncView] : Live fetch progress with a spinner and progress bar
//  2. [ResultView] : Summary of new videos, failures, and rate limit hits
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the sync Engine, providing non-blocking status reporting during runs.
//
// Cancellation is cooperative: pressing c (or q mid-run) flips a switch the
// engine polls between fetches, so in-flight requests drain and everything
// fetched so far is still written before the result view appears.
package ui
