// Package models defines the core domain models for shared expense tracking.
//
// # Models
//
//   - Expense: one shared cost recorded by its owner, split by percentage
//   - SplitShare: one participant's stake in an Expense, with payment state
//   - Participant: the owner or a partner as seen by the split engine
//   - Partner: a counterparty relationship owned by a user
//   - User: a registered account; the owner of expenses and partners
//
// # Design Principles
//
// 1. **Derived status**: Expense.Status is never set directly by callers; the
// calculator package derives it from the paid flags of the splits
// 2. **Opaque categories**: the engine treats a category as a label; the list
// of valid labels is configuration
// 3. **Avoid circular references**: relationships use ID strings, not pointers
// 4. **Plain numbers**: amounts and percentages are float64; formatting and
// currency are a presentation concern
package models
