// Package models contains GORM persistence models that map to database tables.
// Domain types carry no ORM tags; each model converts to and from its domain type.
package models
