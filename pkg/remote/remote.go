// Package remote talks to the row store behind the generic CRUD endpoint.
package remote

import (
	"context"

	"tableflip.dev/daybook/pkg/entity"
)

// Store is the remote row store. Every failure, whether transport or a
// success:false reply, surfaces as an apperr remote error.
type Store interface {
	// List reads every row of kind. month is a YYYY-MM token for date scoped
	// kinds and empty otherwise.
	List(ctx context.Context, kind entity.Kind, month string) ([]entity.Row, error)
	// Create stores row and returns it as stored. Rows without an id get one.
	Create(ctx context.Context, kind entity.Kind, row entity.Row) (entity.Row, error)
	// Update merges patch into the row with id.
	Update(ctx context.Context, kind entity.Kind, id string, patch entity.Row) error
	// Delete removes the row with id.
	Delete(ctx context.Context, kind entity.Kind, id string) error
}

// Action is the write verb sent in a POST body.
type Action string

const (
	ActionGet    Action = "get"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Request is the POST body of a write.
type Request struct {
	Action  Action      `json:"action"`
	Sheet   entity.Kind `json:"sheet"`
	ID      string      `json:"id,omitempty"`
	Payload entity.Row  `json:"payload,omitempty"`
}

// Response is the reply to both reads and writes.
type Response struct {
	Success bool         `json:"success"`
	Data    []entity.Row `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
}
