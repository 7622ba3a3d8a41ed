package cart

// Messages are the literal strings handed to the notifier, one per
// failure class.
type Messages struct {
	OutOfStock   string
	AddFailed    string
	RemoveFailed string
	UpdateFailed string
}

var DefaultMessages = Messages{
	OutOfStock:   "Requested quantity is out of stock",
	AddFailed:    "Failed to add product",
	RemoveFailed: "Failed to remove product",
	UpdateFailed: "Failed to change product quantity",
}

// PortugueseMessages are the strings the storefront shipped with.
var PortugueseMessages = Messages{
	OutOfStock:   "Quantidade solicitada fora de estoque",
	AddFailed:    "Erro na adição do produto",
	RemoveFailed: "Erro na remoção do produto",
	UpdateFailed: "Erro na alteração de quantidade do produto",
}

// MessagesFor picks a message set by locale; unknown locales get English.
func MessagesFor(locale string) Messages {
	switch locale {
	case "pt", "pt-BR", "pt_BR":
		return PortugueseMessages
	default:
		return DefaultMessages
	}
}
