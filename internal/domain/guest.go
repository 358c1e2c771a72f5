package domain

import (
	"strings"
	"time"
)

// Guest é a identidade interna de um hóspede, vinculada a um único email.
// É independente do provedor (credenciais ou OAuth) que autenticou o usuário.
type Guest struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// GuestUpdate representa uma atualização parcial do hóspede.
// Campos nil não são alterados.
type GuestUpdate struct {
	FullName *string `json:"full_name"`
}

// NormalizeEmail remove espaços e converte o email para minúsculas.
// Todas as buscas e inserções de Guest usam o email normalizado.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailLocalPart retorna a parte anterior ao '@' (usada como nome padrão).
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
