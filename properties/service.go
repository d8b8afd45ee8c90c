package properties

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"versare/common"
	"versare/locations"
	"versare/models"
	"versare/storage"
)

const featuredLimit = 6

var (
	errPropertyNotFound = common.NotFound("Imóvel não encontrado")
	errDuplicateCode    = common.Conflict("Já existe um imóvel com este código")
	errMissingFields    = common.BadRequest("Campos obrigatórios não preenchidos")
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

type Service struct {
	db    *gorm.DB
	files *storage.Store
}

func NewService(db *gorm.DB, files *storage.Store) *Service {
	return &Service{db: db, files: files}
}

// PropertyInput é o corpo aceito na criação e na edição de imóveis.
type PropertyInput struct {
	Code           string          `json:"code"`
	Title          string          `json:"title"`
	Type           string          `json:"type"`
	PropertyType   string          `json:"property_type"`
	Price          common.OptFloat `json:"price"`
	Status         string          `json:"status"`
	Neighborhood   string          `json:"neighborhood"`
	City           string          `json:"city"`
	CityID         common.OptID    `json:"city_id"`
	NeighborhoodID common.OptID    `json:"neighborhood_id"`
	Address        *string         `json:"address"`
	PostalCode     *string         `json:"postal_code"`
	Area           common.OptInt   `json:"area"`
	Bedrooms       common.OptInt   `json:"bedrooms"`
	Bathrooms      common.OptInt   `json:"bathrooms"`
	ParkingSpaces  common.OptInt   `json:"parking_spaces"`
	Suites         common.OptInt   `json:"suites"`
	Furnished      *string         `json:"furnished"`
	Description    *string         `json:"description"`
	Featured       common.Flag     `json:"featured"`
	// nil mantém as comodidades atuais; lista (mesmo vazia) substitui todas
	Amenities *[]string `json:"amenities"`
}

type PropertyDetail struct {
	models.Property
	Amenities       []string               `json:"amenities"`
	Images          []models.PropertyImage `json:"images"`
	Videos          []models.PropertyVideo `json:"videos"`
	DescriptionHTML string                 `json:"description_html"`
}

func (in *PropertyInput) normalize() {
	in.Code = strings.TrimSpace(in.Code)
	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.TrimSpace(in.Type)
	in.PropertyType = strings.TrimSpace(in.PropertyType)
	in.Status = strings.TrimSpace(in.Status)
	in.Neighborhood = strings.TrimSpace(in.Neighborhood)
	in.City = strings.TrimSpace(in.City)
}

func (in *PropertyInput) validate() error {
	if in.Title == "" || in.Type == "" || in.PropertyType == "" || !in.Price.Valid ||
		in.Status == "" || in.Neighborhood == "" || in.City == "" {
		return errMissingFields
	}
	if in.Price.Value < 0 {
		return common.BadRequest("Preço inválido")
	}

	switch in.Type {
	case models.PropertyTypeSale, models.PropertyTypeRent, models.PropertyTypeLaunch:
	default:
		return common.BadRequest("Tipo de negócio inválido")
	}

	switch in.Status {
	case models.PropertyStatusActive, models.PropertyStatusInactive, models.PropertyStatusSold:
	default:
		return common.BadRequest("Status inválido")
	}

	return nil
}

// columns devolve os campos editáveis; o código fica de fora porque não muda.
func (in *PropertyInput) columns(cityID, neighborhoodID *uint) map[string]interface{} {
	return map[string]interface{}{
		"title":           in.Title,
		"type":            in.Type,
		"property_type":   in.PropertyType,
		"price":           in.Price.Value,
		"status":          in.Status,
		"neighborhood":    in.Neighborhood,
		"city":            in.City,
		"city_id":         cityID,
		"neighborhood_id": neighborhoodID,
		"address":         in.Address,
		"postal_code":     in.PostalCode,
		"area":            in.Area.Ptr(),
		"bedrooms":        in.Bedrooms.Ptr(),
		"bathrooms":       in.Bathrooms.Ptr(),
		"parking_spaces":  in.ParkingSpaces.Ptr(),
		"suites":          in.Suites.Ptr(),
		"furnished":       in.Furnished,
		"description":     in.Description,
		"featured":        bool(in.Featured),
	}
}

// resolveLocation usa os ids enviados e completa os que faltam pelo nome.
func (in *PropertyInput) resolveLocation(tx *gorm.DB) (cityID, neighborhoodID *uint, err error) {
	cityID, neighborhoodID = in.CityID.Ptr(), in.NeighborhoodID.Ptr()
	if cityID != nil && neighborhoodID != nil {
		return cityID, neighborhoodID, nil
	}

	rc, rn, err := locations.ResolveTx(tx, in.City, in.Neighborhood)
	if err != nil {
		return nil, nil, err
	}
	if cityID == nil {
		cityID = rc
	}
	if neighborhoodID == nil {
		neighborhoodID = rn
	}
	return cityID, neighborhoodID, nil
}

func replaceAmenities(tx *gorm.DB, propertyID uint, names []string) error {
	if err := tx.Where("property_id = ?", propertyID).Delete(&models.PropertyAmenity{}).Error; err != nil {
		return err
	}

	rows := make([]models.PropertyAmenity, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		rows = append(rows, models.PropertyAmenity{PropertyID: propertyID, Name: name})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (s *Service) Search(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	properties := []models.Property{}
	err := s.db.WithContext(ctx).
		Scopes(filter.Scopes()...).
		Scopes(newestFirst).
		Find(&properties).Error
	return properties, err
}

func (s *Service) Featured(ctx context.Context) ([]models.Property, error) {
	properties := []models.Property{}
	err := s.db.WithContext(ctx).
		Where("featured = ? AND status = ?", true, models.PropertyStatusActive).
		Scopes(newestFirst).
		Limit(featuredLimit).
		Find(&properties).Error
	return properties, err
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPropertyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Detail junta o imóvel com comodidades, imagens e vídeos. As três consultas
// rodam em paralelo e qualquer falha derruba a resposta inteira.
func (s *Service) Detail(ctx context.Context, id uint) (*PropertyDetail, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &PropertyDetail{Property: *p}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.PropertyAmenity{}).
			Where("property_id = ?", id).Order("id").
			Pluck("name", &detail.Amenities).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("property_id = ?", id).Order("is_main DESC, id").
			Find(&detail.Images).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("property_id = ?", id).Order("id").
			Find(&detail.Videos).Error
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if detail.Amenities == nil {
		detail.Amenities = []string{}
	}
	if detail.Images == nil {
		detail.Images = []models.PropertyImage{}
	}
	if detail.Videos == nil {
		detail.Videos = []models.PropertyVideo{}
	}

	if p.Description != nil && *p.Description != "" {
		var buf bytes.Buffer
		if err := md.Convert([]byte(*p.Description), &buf); err != nil {
			common.Logger.WithError(err).WithField("property_id", id).Warn("Erro ao converter descrição")
		} else {
			detail.DescriptionHTML = buf.String()
		}
	}

	return detail, nil
}

// Create grava o imóvel e as comodidades na mesma transação.
func (s *Service) Create(ctx context.Context, in PropertyInput) (*models.Property, error) {
	in.normalize()
	if in.Code == "" {
		return nil, errMissingFields
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var property models.Property
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Property{}).Where("code = ?", in.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicateCode
		}

		cityID, neighborhoodID, err := in.resolveLocation(tx)
		if err != nil {
			return err
		}

		property = models.Property{
			Code:           in.Code,
			Title:          in.Title,
			Type:           in.Type,
			PropertyType:   in.PropertyType,
			Price:          in.Price.Value,
			Status:         in.Status,
			Neighborhood:   in.Neighborhood,
			City:           in.City,
			CityID:         cityID,
			NeighborhoodID: neighborhoodID,
			Address:        in.Address,
			PostalCode:     in.PostalCode,
			Area:           in.Area.Ptr(),
			Bedrooms:       in.Bedrooms.Ptr(),
			Bathrooms:      in.Bathrooms.Ptr(),
			ParkingSpaces:  in.ParkingSpaces.Ptr(),
			Suites:         in.Suites.Ptr(),
			Furnished:      in.Furnished,
			Description:    in.Description,
			Featured:       bool(in.Featured),
		}
		if err := tx.Create(&property).Error; err != nil {
			return err
		}

		if in.Amenities != nil {
			return replaceAmenities(tx, property.ID, *in.Amenities)
		}
		return nil
	})
	if err != nil {
		if common.IsUniqueViolation(err) {
			return nil, errDuplicateCode
		}
		return nil, err
	}

	return &property, nil
}

// Update altera os campos editáveis. O código enviado é ignorado.
func (s *Service) Update(ctx context.Context, id uint, in PropertyInput) error {
	in.normalize()
	if err := in.validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cityID, neighborhoodID, err := in.resolveLocation(tx)
		if err != nil {
			return err
		}

		values := in.columns(cityID, neighborhoodID)
		values["updated_at"] = time.Now()

		res := tx.Model(&models.Property{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPropertyNotFound
		}

		if in.Amenities != nil {
			return replaceAmenities(tx, id, *in.Amenities)
		}
		return nil
	})
}

// Delete remove o imóvel com comodidades, imagens e vídeos. Os arquivos das
// imagens só são apagados depois do commit.
func (s *Service) Delete(ctx context.Context, id uint) error {
	var imageURLs []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PropertyImage{}).Where("property_id = ?", id).Pluck("image_url", &imageURLs).Error; err != nil {
			return err
		}

		for _, child := range []interface{}{&models.PropertyAmenity{}, &models.PropertyImage{}, &models.PropertyVideo{}} {
			if err := tx.Where("property_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&models.Property{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPropertyNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.files.RemoveAll(imageURLs); err != nil {
		common.Logger.WithError(err).WithField("property_id", id).Warn("Erro ao remover imagens do imóvel")
	}
	return nil
}
