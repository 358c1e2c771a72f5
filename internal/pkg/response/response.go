// Package response padroniza as respostas JSON dos handlers e middlewares.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/logger"
)

// JSON escreve o status e, se houver, o corpo codificado em JSON.
func JSON(w http.ResponseWriter, log logger.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Falha ao codificar JSON de resposta", err)
	}
}

// Error traduz o erro para o corpo {code, category, message}.
// Erros 5xx são logados em nível de erro e o cliente recebe apenas uma mensagem genérica.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
		message = genericMessage(status)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	JSON(w, log, status, domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// Handle escreve data com successStatus quando err é nil e o erro traduzido caso contrário.
func Handle(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err != nil {
		Error(w, r, log, err)
		return
	}
	JSON(w, log, successStatus, data)
}

func genericMessage(status int) string {
	if status == http.StatusServiceUnavailable {
		return "Serviço temporariamente indisponível. Tente novamente mais tarde."
	}
	return "Ocorreu um erro inesperado."
}
