// Package initorch provides a component-initialization orchestration runtime.
//
// It offers:
// - component definition registration by identity with generic Definition
// - memoized depth-first resolution with cycle detection
// - blocking and launched (background) execution with an await-all barrier
// - bulk initialization from a discovered (identity, kind) batch
// - dependency graph export and static validation
package initorch
