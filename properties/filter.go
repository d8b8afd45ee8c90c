package properties

import (
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"versare/common"
)

// PropertyFilter reúne os filtros opcionais da busca. Campos vazios ou nil não
// restringem nada; os presentes são combinados com AND.
type PropertyFilter struct {
	Type           string
	Status         string
	City           string
	Neighborhood   string
	MinPrice       *float64
	MaxPrice       *float64
	CityID         *uint
	NeighborhoodID *uint
	Featured       *bool
}

// FilterFromQuery lê os filtros da query string. Números malformados são BadRequest.
func FilterFromQuery(q url.Values) (PropertyFilter, error) {
	f := PropertyFilter{
		Type:         strings.TrimSpace(q.Get("type")),
		Status:       strings.TrimSpace(q.Get("status")),
		City:         strings.TrimSpace(q.Get("city")),
		Neighborhood: strings.TrimSpace(q.Get("neighborhood")),
	}

	var err error
	if f.MinPrice, err = parsePrice(q.Get("min_price"), "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(q.Get("max_price"), "max_price"); err != nil {
		return f, err
	}
	if f.CityID, err = parseID(q.Get("city_id"), "city_id"); err != nil {
		return f, err
	}
	if f.NeighborhoodID, err = parseID(q.Get("neighborhood_id"), "neighborhood_id"); err != nil {
		return f, err
	}

	if raw := strings.TrimSpace(q.Get("featured")); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return f, common.BadRequest("Parâmetro featured inválido")
		}
		f.Featured = &featured
	}

	return f, nil
}

func parsePrice(raw, name string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, common.BadRequest("Parâmetro " + name + " inválido")
	}
	return &v, nil
}

func parseID(raw, name string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, common.BadRequest("Parâmetro " + name + " inválido")
	}
	id := uint(v)
	return &id, nil
}

func whereEq(column string, value interface{}) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", value)
	}
}

// Scopes devolve um scope parametrizado por filtro presente.
func (f PropertyFilter) Scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB

	if f.Type != "" {
		scopes = append(scopes, whereEq("properties.type", f.Type))
	}
	if f.Status != "" {
		scopes = append(scopes, whereEq("properties.status", f.Status))
	}
	if f.City != "" {
		scopes = append(scopes, whereEq("properties.city", f.City))
	}
	if f.Neighborhood != "" {
		scopes = append(scopes, whereEq("properties.neighborhood", f.Neighborhood))
	}
	if f.MinPrice != nil {
		lo := *f.MinPrice
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("properties.price >= ?", lo)
		})
	}
	if f.MaxPrice != nil {
		hi := *f.MaxPrice
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("properties.price <= ?", hi)
		})
	}
	if f.CityID != nil {
		scopes = append(scopes, whereEq("properties.city_id", *f.CityID))
	}
	if f.NeighborhoodID != nil {
		scopes = append(scopes, whereEq("properties.neighborhood_id", *f.NeighborhoodID))
	}
	if f.Featured != nil {
		scopes = append(scopes, whereEq("properties.featured", *f.Featured))
	}

	return scopes
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("properties.created_at DESC").Order("properties.id DESC")
}
