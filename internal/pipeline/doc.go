// Package pipeline provides a framework for executing summarization steps
// in sequence.
//
// The pipeline pattern is used to process target sites through multiple
// stages: page fetching, tracker detection, dashboard aggregation, and
// leaderboard recording. Each stage is implemented as a Step that receives
// the current summary and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for slow or unresponsive sites
// 4. It enables potential parallelization of independent steps in the future
//
// The pipeline supports both individual targets and batch processing with
// concurrency control using errgroup.
package pipeline
