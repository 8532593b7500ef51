package eventstore

import (
	"testing"

	"github.com/clivox/backend/internal/domain/auth"
	"github.com/clivox/backend/internal/domain/client"
	"github.com/clivox/backend/internal/domain/invoice"
	"github.com/clivox/backend/internal/eventsourcing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSerializer_RegistersEveryEvent(t *testing.T) {
	s := NewSerializer()

	names := []string{
		client.EventNameClientCreated,
		client.EventNameClientUpdated,
		client.EventNameClientDeleted,
		invoice.EventNameInvoiceCreated,
		invoice.EventNameInvoiceUpdated,
		invoice.EventNameInvoiceStatusChanged,
		invoice.EventNameInvoiceItemsAdded,
		invoice.EventNameInvoiceItemsModified,
		invoice.EventNameInvoiceItemsDeleted,
		invoice.EventNameExpenseProofFilesAdded,
		invoice.EventNameExpenseProofFilesModified,
		invoice.EventNameExpenseProofFilesDeleted,
		invoice.EventNameInvoiceDeleted,
		auth.EventNameUserCreated,
		auth.EventNameUserLoggedIn,
		auth.EventNameUserLoggedOut,
		auth.EventNameUserPasswordChanged,
		auth.EventNameUserLoginFailed,
		auth.EventNameUserAccountLocked,
		auth.EventNameUserAccountUnlocked,
		auth.EventNameUserDeleted,
	}

	for _, name := range names {
		assert.True(t, s.IsRegistered(name), "event %s is not registered", name)
	}
	assert.Len(t, s.RegisteredNames(), len(names))
}

func TestRegisterMaterializers(t *testing.T) {
	reg := &capturingRegistry{kinds: make(map[string]bool)}

	RegisterMaterializers(reg)

	require.Len(t, reg.kinds, 3)
	assert.True(t, reg.kinds[client.AggregateKindClient])
	assert.True(t, reg.kinds[invoice.AggregateKindInvoice])
	assert.True(t, reg.kinds[auth.AggregateKindUser])
}

type capturingRegistry struct {
	kinds map[string]bool
}

func (r *capturingRegistry) RegisterMaterializer(kind string, m eventsourcing.Materializer) {
	r.kinds[kind] = m != nil
}
