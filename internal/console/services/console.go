// Package services implements the admin console's use cases on top of the
// transport client, token store, and state aggregate: session lifecycle,
// step-up verification, impersonation, and the administrative mutations.
//
// Every mutation follows the same shape: gate locally with the true actor's
// role, call the authoritative store, and only update the local aggregate
// from the store's response. The local gate gives fast feedback; the store
// re-checks everything.
package services

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/console/client"
	"github.com/dmitrijs2005/owncent-admin/internal/console/state"
	"github.com/dmitrijs2005/owncent-admin/internal/console/tokens"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
	"github.com/dmitrijs2005/owncent-admin/internal/logging"
)

// OpResult is the outcome of an operation that can fail for business reasons
// without being an error (for example a rejected step-up code).
type OpResult struct {
	Success bool
	Message string
}

// Console wires the transport client, credential store, and state aggregate
// into the console's use cases.
type Console struct {
	client client.Client
	tokens *tokens.Store
	state  *state.Aggregate
	log    logging.Logger

	// now is replaceable in tests; freshness windows depend on it.
	now func() time.Time
}

func New(c client.Client, ts *tokens.Store, st *state.Aggregate, log logging.Logger) *Console {
	return &Console{
		client: c,
		tokens: ts,
		state:  st,
		log:    log.With("component", "console"),
		now:    time.Now,
	}
}

// State exposes the read-side aggregate for rendering.
func (c *Console) State() *state.Aggregate {
	return c.state
}

// requireActor returns the true signed-in identity and whether an
// impersonation is active.
func (c *Console) requireActor() (domain.SessionInfo, bool, error) {
	identity, ok := c.state.Identity()
	if !ok {
		return domain.SessionInfo{}, false, common.ErrorUnauthorized
	}
	_, impersonating := c.state.Impersonation()
	return identity, impersonating, nil
}

func forbidden(reason string) error {
	return fmt.Errorf("%w: %s", common.ErrorForbidden, reason)
}
