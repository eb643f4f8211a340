// Package models holds the GORM models of the console's settings store.
// Domain types carry no ORM tags; repositories convert at the boundary.
package models
