// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities are free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. ToDomain / FromDomain convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// The PostgreSQL schema itself is owned by the SQL migrations; the tags here
// only need to be precise enough for AutoMigrate in SQLite-backed tests.
package models
