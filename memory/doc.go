// Package memory provides user-scoped persistent memory for chat
// conversations, backed by a vector store and an embedding model.
//
// Every chat turn is stored as a Record namespaced by user ID. Records are
// retrieved by semantic similarity to augment prompts, or by recency to
// build a user profile.
//
// Architecture:
//   - Store: vector storage backend (chromem-go embedded database)
//   - Embedder: text-to-vector conversion (OpenAI-compatible API, local
//     ONNX model, or deterministic mock for tests)
//   - Manager: orchestrates add, search, profile, and clear operations
//
// The store is the single source of truth; the manager keeps no local
// copy of records beyond a small embedding cache. Writes issued through
// AddAsync are tracked so a following Search observes them.
package memory
