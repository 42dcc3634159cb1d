// Package pipeline provides a framework for executing scan steps in
// sequence.
//
// The pipeline pattern is used to process documents through multiple
// stages: ingestion, PII detection, redaction simulation, adversarial
// verification, and persistence. Each stage is implemented as a Step that
// receives the current report and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for large batch runs
// 4. The verify command reuses the same steps minus detection
//
// The pipeline supports both individual scans and batch processing with
// concurrency control using errgroup.
package pipeline
