// Package config provides configuration structures and utilities for
// trackerscope. It defines the main options for summarizing sites,
// per-site dashboard controls, and output format preferences.
package config
