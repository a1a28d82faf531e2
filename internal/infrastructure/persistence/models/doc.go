// Package models contains persistence models for aggregates whose storage
// shape differs from their domain shape. Simple aggregates with a stable
// one-to-one mapping (e.g. catalog.Product) are persisted directly.
package models
