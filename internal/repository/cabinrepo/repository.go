package cabinrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gocabin/internal/domain"
	apperror "gocabin/internal/errors"
	"gocabin/internal/pkg/cache"
	"gocabin/internal/pkg/database"
	"gocabin/internal/pkg/logger"
)

// Define a chave de cache para cabanas.
const cabinCacheKey = "cabin:%s"

// CabinRepository lê o catálogo de cabanas (dados de referência somente leitura).
type CabinRepository struct {
	DB        database.Querier
	Cache     cache.Client // Pode ser nil: sem cache, toda leitura vai ao DB
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewCabinRepository cria e retorna uma nova instância do Repositório de Cabanas.
func NewCabinRepository(db database.Querier, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *CabinRepository {
	return &CabinRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// FindByID busca uma cabana pelo ID, utilizando a estratégia Cache-Aside.
func (r *CabinRepository) FindByID(ctx context.Context, id string) (domain.Cabin, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(cabinCacheKey, id)
	var cabin domain.Cabin

	// 1. Tentar obter do Cache (Redis)
	if r.Cache != nil {
		cached, err := r.Cache.Get(ctxTimeout, key)
		if err == nil {
			if json.Unmarshal([]byte(cached), &cabin) == nil {
				r.logger.Debug("Cabana obtida do cache.", map[string]interface{}{"cabin_id": id})
				return cabin, nil
			}
			r.logger.Warn("Falha ao desserializar cabana do cache.", map[string]interface{}{"cabin_id": id})
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			// Falha real de cache: seguimos para o DB
			r.logger.Warn("Falha ao ler cabana do cache.", map[string]interface{}{"cabin_id": id, "error": err.Error()})
		}
	}

	// 2. Busca no Banco de Dados
	query := `
        SELECT id, name, max_capacity, regular_price, discount, description, image
        FROM cabins
        WHERE id = $1`

	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&cabin.ID, &cabin.Name, &cabin.MaxCapacity, &cabin.RegularPrice,
		&cabin.Discount, &cabin.Description, &cabin.Image,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cabin{}, apperror.NewNotFoundError(fmt.Sprintf("Cabana com ID %s não existe.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar cabana no DB.", err)
		return domain.Cabin{}, apperror.NewDBError("getCabin", err)
	}

	// 3. Popular o cache para as próximas leituras
	if r.Cache != nil {
		if payload, err := json.Marshal(cabin); err == nil {
			if err := r.Cache.Set(ctxTimeout, key, payload, r.CacheTTL); err != nil {
				r.logger.Warn("Falha ao gravar cabana no cache.", map[string]interface{}{"cabin_id": id, "error": err.Error()})
			}
		}
	}

	return cabin, nil
}
