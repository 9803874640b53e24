package notification

import (
	"fmt"

	"imovelhub/internal/domain/request"
)

type event string

const (
	eventCreated  event = "created"
	eventAccepted event = "accepted"
	eventRejected event = "rejected"
	eventPaid     event = "paid"
)

type templateParams struct {
	ActorName     string
	PropertyTitle string
	Reason        string
}

type catalogEntry struct {
	Type    Type
	Title   string
	Message func(p templateParams) string
}

type catalogKey struct {
	kind request.Kind
	ev   event
}

// catalog maps every (kind, transition) pair to its notification type and
// copy. All request kinds must appear here for each lifecycle event they
// can reach; typeFor returning false is a programming error.
var catalog = map[catalogKey]catalogEntry{
	{request.KindContact, eventCreated}: {
		Type:  TypeContactRequest,
		Title: "Novo pedido de contacto",
		Message: func(p templateParams) string {
			return fmt.Sprintf("%s quer entrar em contacto consigo%s.", actor(p), about(p))
		},
	},
	{request.KindVaultAccess, eventCreated}: {
		Type:  TypeVaultAccessRequest,
		Title: "Novo pedido de acesso ao cofre",
		Message: func(p templateParams) string {
			return fmt.Sprintf("%s pediu acesso ao cofre digital%s.", actor(p), about(p))
		},
	},
	{request.KindBuyerVaultAccess, eventCreated}: {
		Type:  TypeBuyerVaultRequest,
		Title: "Novo pedido de comprador",
		Message: func(p templateParams) string {
			return fmt.Sprintf("%s pediu acesso de comprador ao cofre%s.", actor(p), about(p))
		},
	},

	{request.KindContact, eventAccepted}: {
		Type:  TypeContactAccepted,
		Title: "Pedido de contacto aceite",
		Message: func(p templateParams) string {
			return fmt.Sprintf("%s aceitou o seu pedido de contacto. Já podem trocar mensagens.", actor(p))
		},
	},
	{request.KindVaultAccess, eventAccepted}: {
		Type:  TypeVaultAccessApproved,
		Title: "Acesso ao cofre concedido",
		Message: func(p templateParams) string {
			return fmt.Sprintf("%s concedeu-lhe acesso ao cofre digital%s.", actor(p), about(p))
		},
	},
	{request.KindBuyerVaultAccess, eventAccepted}: {
		Type:  TypeBuyerVaultApproved,
		Title: "Pedido aprovado",
		Message: func(p templateParams) string {
			return fmt.Sprintf("%s aprovou o seu pedido. Conclua o pagamento para aceder ao cofre.", actor(p))
		},
	},

	{request.KindContact, eventRejected}: {
		Type:  TypeContactRejected,
		Title: "Pedido de contacto recusado",
		Message: func(p templateParams) string {
			return withReason(fmt.Sprintf("%s recusou o seu pedido de contacto.", actor(p)), p.Reason)
		},
	},
	{request.KindVaultAccess, eventRejected}: {
		Type:  TypeVaultAccessRejected,
		Title: "Acesso ao cofre recusado",
		Message: func(p templateParams) string {
			return withReason(fmt.Sprintf("%s recusou o pedido de acesso ao cofre%s.", actor(p), about(p)), p.Reason)
		},
	},
	{request.KindBuyerVaultAccess, eventRejected}: {
		Type:  TypeBuyerVaultRejected,
		Title: "Pedido recusado",
		Message: func(p templateParams) string {
			return withReason(fmt.Sprintf("%s recusou o seu pedido de comprador.", actor(p)), p.Reason)
		},
	},

	{request.KindBuyerVaultAccess, eventPaid}: {
		Type:  TypeBuyerVaultPaid,
		Title: "Pagamento confirmado",
		Message: func(p templateParams) string {
			return fmt.Sprintf("O pagamento foi confirmado. Já tem acesso ao cofre digital%s.", about(p))
		},
	},
}

func lookup(kind request.Kind, ev event) (catalogEntry, bool) {
	e, ok := catalog[catalogKey{kind, ev}]
	return e, ok
}

func actor(p templateParams) string {
	if p.ActorName == "" {
		return "Um utilizador"
	}
	return p.ActorName
}

func about(p templateParams) string {
	if p.PropertyTitle == "" {
		return ""
	}
	return fmt.Sprintf(" sobre «%s»", p.PropertyTitle)
}

func withReason(msg, reason string) string {
	if reason == "" {
		return msg
	}
	return msg + " Motivo: " + reason
}
