package domain

import "time"

// Provider é o conjunto fechado de caminhos de autenticação.
type Provider string

const (
	ProviderCredentials Provider = "credentials"
	ProviderGoogle      Provider = "google"
)

// DefaultAvatar é a imagem usada quando o provedor não informa uma.
const DefaultAvatar = "/default-user.jpg"

// Principal é a identidade verificada entregue após a autenticação externa.
// GuestID só está preenchido quando a verificação já resolveu o hóspede.
type Principal struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	GuestID string `json:"guest_id,omitempty"`
}

// Token é o conteúdo do token de sessão emitido ao cliente.
// GuestID pode estar vazio em tokens emitidos antes da existência do campo.
type Token struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	GuestID string `json:"guest_id,omitempty"`
}

// SessionUser é o usuário exposto na sessão.
type SessionUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	GuestID string `json:"guest_id"`
}

// Session é a sessão materializada lida pelos handlers.
type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}
