package eventstore

import (
	"github.com/clivox/backend/internal/domain/auth"
	"github.com/clivox/backend/internal/domain/client"
	"github.com/clivox/backend/internal/domain/invoice"
	"github.com/clivox/backend/internal/eventsourcing"
)

// NewSerializer returns a serializer with every domain event registered.
// Forgetting a registration surfaces as ErrUnhandledEvent on the first
// replay of such an event, never as silently dropped history.
func NewSerializer() *eventsourcing.Serializer {
	s := eventsourcing.NewSerializer()

	s.Register(client.EventNameClientCreated, &client.ClientCreatedEvent{})
	s.Register(client.EventNameClientUpdated, &client.ClientUpdatedEvent{})
	s.Register(client.EventNameClientDeleted, &client.ClientDeletedEvent{})

	s.Register(invoice.EventNameInvoiceCreated, &invoice.InvoiceCreatedEvent{})
	s.Register(invoice.EventNameInvoiceUpdated, &invoice.InvoiceUpdatedEvent{})
	s.Register(invoice.EventNameInvoiceStatusChanged, &invoice.InvoiceStatusChangedEvent{})
	s.Register(invoice.EventNameInvoiceItemsAdded, &invoice.InvoiceItemsAddedEvent{})
	s.Register(invoice.EventNameInvoiceItemsModified, &invoice.InvoiceItemsModifiedEvent{})
	s.Register(invoice.EventNameInvoiceItemsDeleted, &invoice.InvoiceItemsDeletedEvent{})
	s.Register(invoice.EventNameExpenseProofFilesAdded, &invoice.ExpenseProofFilesAddedEvent{})
	s.Register(invoice.EventNameExpenseProofFilesModified, &invoice.ExpenseProofFilesModifiedEvent{})
	s.Register(invoice.EventNameExpenseProofFilesDeleted, &invoice.ExpenseProofFilesDeletedEvent{})
	s.Register(invoice.EventNameInvoiceDeleted, &invoice.InvoiceDeletedEvent{})

	s.Register(auth.EventNameUserCreated, &auth.UserCreatedEvent{})
	s.Register(auth.EventNameUserLoggedIn, &auth.UserLoggedInEvent{})
	s.Register(auth.EventNameUserLoggedOut, &auth.UserLoggedOutEvent{})
	s.Register(auth.EventNameUserPasswordChanged, &auth.UserPasswordChangedEvent{})
	s.Register(auth.EventNameUserLoginFailed, &auth.UserLoginFailedEvent{})
	s.Register(auth.EventNameUserAccountLocked, &auth.UserAccountLockedEvent{})
	s.Register(auth.EventNameUserAccountUnlocked, &auth.UserAccountUnlockedEvent{})
	s.Register(auth.EventNameUserDeleted, &auth.UserDeletedEvent{})

	return s
}

// MaterializerRegistry binds each aggregate kind to its snapshot fold
type MaterializerRegistry interface {
	RegisterMaterializer(kind string, m eventsourcing.Materializer)
}

// RegisterMaterializers installs the snapshot folds for every aggregate
// kind on the given store.
func RegisterMaterializers(store MaterializerRegistry) {
	store.RegisterMaterializer(client.AggregateKindClient, eventsourcing.NewMaterializer[*client.Client](client.Projection{}))
	store.RegisterMaterializer(invoice.AggregateKindInvoice, eventsourcing.NewMaterializer[*invoice.Invoice](invoice.Projection{}))
	store.RegisterMaterializer(auth.AggregateKindUser, eventsourcing.NewMaterializer[*auth.User](auth.Projection{}))
}
