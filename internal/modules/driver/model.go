// README: Driver account and vehicle models.
package driver

import (
	"time"

	"payana/internal/types"
)

type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Plate string `json:"plate"`
	Color string `json:"color,omitempty"`
}

type Driver struct {
	ID          types.ID     `json:"id"`
	Name        string       `json:"name"`
	Phone       string       `json:"phone"`
	Vehicle     Vehicle      `json:"vehicle"`
	Location    *types.Point `json:"location,omitempty"`
	IsAvailable bool         `json:"is_available"`
	Rating      float64      `json:"rating"`
	// Credential is never serialized; it is returned once at registration.
	Credential string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
