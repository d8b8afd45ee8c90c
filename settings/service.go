package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"versare/common"
	"versare/models"
)

// PublicKeys são as únicas configurações expostas ao site.
var PublicKeys = []string{"site_name", "primary_phone", "whatsapp", "primary_email", "address"}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func toMap(settings []models.Setting) map[string]string {
	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	return out
}

func (s *Service) Public(ctx context.Context) (map[string]string, error) {
	var settings []models.Setting
	if err := s.db.WithContext(ctx).Where("key IN ?", PublicKeys).Find(&settings).Error; err != nil {
		return nil, err
	}
	return toMap(settings), nil
}

func (s *Service) All(ctx context.Context) (map[string]string, error) {
	var settings []models.Setting
	if err := s.db.WithContext(ctx).Order("key").Find(&settings).Error; err != nil {
		return nil, err
	}
	return toMap(settings), nil
}

// Save grava todas as chaves numa única transação; se uma falhar, nenhuma é gravada.
func (s *Service) Save(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return common.BadRequest("Nenhuma configuração enviada")
	}

	now := time.Now()
	rows := make([]models.Setting, 0, len(values))
	for key, value := range values {
		key = strings.TrimSpace(key)
		if key == "" {
			return common.BadRequest("Chave de configuração inválida")
		}
		rows = append(rows, models.Setting{Key: key, Value: value, CreatedAt: now, UpdatedAt: now})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&rows[i]).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ValuesFromJSON converte o corpo do painel em texto. O formulário às vezes
// manda números e booleanos; null vira string vazia.
func ValuesFromJSON(body map[string]json.RawMessage) (map[string]string, error) {
	out := make(map[string]string, len(body))
	for key, raw := range body {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, common.BadRequest("Valor inválido para " + key)
		}
		switch val := v.(type) {
		case nil:
			out[key] = ""
		case string:
			out[key] = val
		case float64, bool:
			out[key] = fmt.Sprint(val)
		default:
			return nil, common.BadRequest("Valor inválido para " + key)
		}
	}
	return out, nil
}
