// README: Rider account model.
package rider

import (
	"time"

	"payana/internal/types"
)

type Rider struct {
	ID     types.ID `json:"id"`
	Name   string   `json:"name"`
	Phone  string   `json:"phone"`
	Rating float64  `json:"rating"`
	// Credential is the rider's secret token. Never serialized; it is
	// returned exactly once, in the registration response.
	Credential string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
