package domain

// Account es la identidad que expone el proveedor de wallet.
// El core solo usa Address como identificador del usuario actual.
type Account struct {
	Address   string
	PublicKey string
	Provider  string // "local", ...
}
