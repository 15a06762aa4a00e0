// Package lightningaddress implements registering and looking up a
// human-readable lightning address, plus the phone-number <-> lightning
// address codec spec 4.11 describes, grounded on
// original_source/src/lightning_address.rs and src/phone_number.rs.
package lightningaddress

import (
	"context"
	"strings"

	"github.com/getlipa/lipa-lightning-lib-go/internal/store"
	"github.com/getlipa/lipa-lightning-lib-go/internal/walleterrors"
)

// RegisterClient is the boundary to the backend's address-assignment
// endpoint, authenticated over a derived-key challenge/response session
// (see internal/auth and BackendClient, the concrete implementation),
// mirroring lightning_address.rs's pigeon::assign_lightning_address
// call.
type RegisterClient interface {
	AssignLightningAddress(ctx context.Context) (string, error)
}

// Manager registers and retrieves the wallet's lightning address.
type Manager struct {
	Store  *store.Store
	Remote RegisterClient
}

// Register assigns a new lightning address from the backend, or returns
// the previously assigned one if Register was already called, mirroring
// LightningAddress::register.
func (m *Manager) Register(ctx context.Context) (string, error) {
	address, err := m.Remote.AssignLightningAddress(ctx)
	if err != nil {
		return "", walleterrors.NewRuntimeError(walleterrors.CodeAuthServiceUnavailable, "failed to register a lightning address", err)
	}
	if err := m.Store.StoreLightningAddress(ctx, address); err != nil {
		return "", err
	}
	return address, nil
}

// Get returns the wallet's registered lightning address, or "", false if
// none is registered yet. Mirrors LightningAddress::get: only an enabled
// address not starting with '-' is eligible (a leading '-' marks a
// phone-number-derived address reserved for another surface, per spec
// 4.11).
func (m *Manager) Get(ctx context.Context) (string, bool, error) {
	addresses, err := m.Store.ListEnabledLightningAddresses(ctx)
	if err != nil {
		return "", false, err
	}
	for _, address := range addresses {
		if !strings.HasPrefix(address, "-") {
			return address, true, nil
		}
	}
	return "", false, nil
}
