package locations

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"versare/common"
	"versare/models"
	"versare/storage"
)

var (
	errStateNotFound        = common.NotFound("Estado não encontrado")
	errCityNotFound         = common.NotFound("Cidade não encontrada")
	errNeighborhoodNotFound = common.NotFound("Bairro não encontrado")
)

// Service mantém a hierarquia estado → cidade → bairro e suas regras de exclusão.
type Service struct {
	db    *gorm.DB
	files *storage.Store
}

func NewService(db *gorm.DB, files *storage.Store) *Service {
	return &Service{db: db, files: files}
}

type StateInput struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type CityInput struct {
	Name    string
	StateID uint
	Image   *multipart.FileHeader
}

type NeighborhoodInput struct {
	Name   string       `json:"name"`
	CityID common.OptID `json:"city_id"`
}

// CityRow é a cidade com os dados do estado, como o painel lista.
type CityRow struct {
	models.City
	StateName         string `json:"state_name"`
	StateAbbreviation string `json:"state_abbreviation"`
}

type NeighborhoodRow struct {
	models.Neighborhood
	CityName          string `json:"city_name"`
	StateID           uint   `json:"state_id"`
	StateName         string `json:"state_name"`
	StateAbbreviation string `json:"state_abbreviation"`
}

// PublicCity é a cidade do carrossel do site, com a quantidade de imóveis.
type PublicCity struct {
	ID                uint    `json:"id"`
	Name              string  `json:"name"`
	ImageURL          *string `json:"image_url"`
	StateID           uint    `json:"state_id"`
	StateName         string  `json:"state_name"`
	StateAbbreviation string  `json:"state_abbreviation"`
	PropertyCount     int64   `json:"property_count"`
}

func notFoundOr(err error, notFound *common.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// Estados

func (s *Service) ListStates(ctx context.Context) ([]models.State, error) {
	states := []models.State{}
	err := s.db.WithContext(ctx).Order("name").Find(&states).Error
	return states, err
}

func (s *Service) GetState(ctx context.Context, id uint) (*models.State, error) {
	var state models.State
	if err := s.db.WithContext(ctx).First(&state, id).Error; err != nil {
		return nil, notFoundOr(err, errStateNotFound)
	}
	return &state, nil
}

func (s *Service) validateState(ctx context.Context, in *StateInput, excludeID uint) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Abbreviation = strings.ToUpper(strings.TrimSpace(in.Abbreviation))
	if in.Name == "" || in.Abbreviation == "" {
		return common.BadRequest("Nome e sigla são obrigatórios")
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.State{}).
		Where("(name = ? OR abbreviation = ?) AND id <> ?", in.Name, in.Abbreviation, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return common.Conflict("Já existe um estado com este nome ou sigla")
	}
	return nil
}

func (s *Service) CreateState(ctx context.Context, in StateInput) (*models.State, error) {
	if err := s.validateState(ctx, &in, 0); err != nil {
		return nil, err
	}

	state := models.State{Name: in.Name, Abbreviation: in.Abbreviation}
	if err := s.db.WithContext(ctx).Create(&state).Error; err != nil {
		if common.IsUniqueViolation(err) {
			return nil, common.Conflict("Já existe um estado com este nome ou sigla")
		}
		return nil, err
	}
	return &state, nil
}

func (s *Service) UpdateState(ctx context.Context, id uint, in StateInput) (*models.State, error) {
	state, err := s.GetState(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateState(ctx, &in, id); err != nil {
		return nil, err
	}

	state.Name = in.Name
	state.Abbreviation = in.Abbreviation
	if err := s.db.WithContext(ctx).Save(state).Error; err != nil {
		if common.IsUniqueViolation(err) {
			return nil, common.Conflict("Já existe um estado com este nome ou sigla")
		}
		return nil, err
	}
	return state, nil
}

func (s *Service) DeleteState(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var state models.State
		if err := tx.First(&state, id).Error; err != nil {
			return notFoundOr(err, errStateNotFound)
		}

		var cities int64
		if err := tx.Model(&models.City{}).Where("state_id = ?", id).Count(&cities).Error; err != nil {
			return err
		}
		if cities > 0 {
			return common.Conflict("Não é possível excluir o estado pois existem cidades vinculadas a ele")
		}

		return tx.Delete(&state).Error
	})
}

// Cidades

func (s *Service) cityQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table("cities").
		Select("cities.*, states.name AS state_name, states.abbreviation AS state_abbreviation").
		Joins("JOIN states ON states.id = cities.state_id")
}

func (s *Service) ListCities(ctx context.Context, stateID *uint) ([]CityRow, error) {
	q := s.cityQuery(ctx)
	if stateID != nil {
		q = q.Where("cities.state_id = ?", *stateID)
	}

	rows := []CityRow{}
	err := q.Order("cities.name").Scan(&rows).Error
	return rows, err
}

func (s *Service) GetCity(ctx context.Context, id uint) (*CityRow, error) {
	var rows []CityRow
	if err := s.cityQuery(ctx).Where("cities.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errCityNotFound
	}
	return &rows[0], nil
}

func (s *Service) validateCity(ctx context.Context, in *CityInput, excludeID uint) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.StateID == 0 {
		return common.BadRequest("Nome e estado são obrigatórios")
	}

	db := s.db.WithContext(ctx)
	var states int64
	if err := db.Model(&models.State{}).Where("id = ?", in.StateID).Count(&states).Error; err != nil {
		return err
	}
	if states == 0 {
		return common.BadRequest("Estado não encontrado")
	}

	var count int64
	err := db.Model(&models.City{}).
		Where("name = ? AND state_id = ? AND id <> ?", in.Name, in.StateID, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return common.Conflict("Já existe uma cidade com este nome neste estado")
	}
	return nil
}

func (s *Service) CreateCity(ctx context.Context, in CityInput) (*models.City, error) {
	if err := s.validateCity(ctx, &in, 0); err != nil {
		return nil, err
	}

	city := models.City{Name: in.Name, StateID: in.StateID}
	if in.Image != nil {
		url, err := s.files.Save(in.Image)
		if err != nil {
			return nil, common.Internal("Erro ao salvar imagem", err)
		}
		city.ImageURL = &url
	}

	if err := s.db.WithContext(ctx).Create(&city).Error; err != nil {
		if city.ImageURL != nil {
			s.files.Remove(*city.ImageURL)
		}
		if common.IsUniqueViolation(err) {
			return nil, common.Conflict("Já existe uma cidade com este nome neste estado")
		}
		return nil, err
	}
	return &city, nil
}

// UpdateCity troca a imagem só depois que a linha foi gravada: o arquivo novo é
// apagado se a gravação falhar e o antigo é apagado depois do commit.
func (s *Service) UpdateCity(ctx context.Context, id uint, in CityInput) (*models.City, error) {
	var city models.City
	if err := s.db.WithContext(ctx).First(&city, id).Error; err != nil {
		return nil, notFoundOr(err, errCityNotFound)
	}
	if err := s.validateCity(ctx, &in, id); err != nil {
		return nil, err
	}

	oldImage := city.ImageURL
	var newImage *string
	if in.Image != nil {
		url, err := s.files.Save(in.Image)
		if err != nil {
			return nil, common.Internal("Erro ao salvar imagem", err)
		}
		newImage = &url
	}

	city.Name = in.Name
	city.StateID = in.StateID
	if newImage != nil {
		city.ImageURL = newImage
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&city).Error; err != nil {
			return err
		}
		// o texto livre dos imóveis acompanha o nome da cidade
		return tx.Model(&models.Property{}).Where("city_id = ?", id).Update("city", city.Name).Error
	})
	if err != nil {
		if newImage != nil {
			s.files.Remove(*newImage)
		}
		if common.IsUniqueViolation(err) {
			return nil, common.Conflict("Já existe uma cidade com este nome neste estado")
		}
		return nil, err
	}

	if newImage != nil && oldImage != nil {
		if err := s.files.Remove(*oldImage); err != nil {
			common.Logger.WithError(err).WithField("image", *oldImage).Warn("Erro ao remover imagem antiga da cidade")
		}
	}
	return &city, nil
}

func (s *Service) DeleteCity(ctx context.Context, id uint) error {
	var city models.City
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&city, id).Error; err != nil {
			return notFoundOr(err, errCityNotFound)
		}

		var neighborhoods int64
		if err := tx.Model(&models.Neighborhood{}).Where("city_id = ?", id).Count(&neighborhoods).Error; err != nil {
			return err
		}
		if neighborhoods > 0 {
			return common.Conflict("Não é possível excluir a cidade pois existem bairros vinculados a ela")
		}

		if err := tx.Model(&models.Property{}).Where("city_id = ?", id).Update("city_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&city).Error
	})
	if err != nil {
		return err
	}

	if city.ImageURL != nil {
		if err := s.files.Remove(*city.ImageURL); err != nil {
			common.Logger.WithError(err).WithField("image", *city.ImageURL).Warn("Erro ao remover imagem da cidade")
		}
	}
	return nil
}

// Bairros

func (s *Service) neighborhoodQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table("neighborhoods").
		Select(`neighborhoods.*, cities.name AS city_name, states.id AS state_id,
			states.name AS state_name, states.abbreviation AS state_abbreviation`).
		Joins("JOIN cities ON cities.id = neighborhoods.city_id").
		Joins("JOIN states ON states.id = cities.state_id")
}

func (s *Service) ListNeighborhoods(ctx context.Context, cityID, stateID *uint) ([]NeighborhoodRow, error) {
	q := s.neighborhoodQuery(ctx)
	if cityID != nil {
		q = q.Where("neighborhoods.city_id = ?", *cityID)
	}
	if stateID != nil {
		q = q.Where("cities.state_id = ?", *stateID)
	}

	rows := []NeighborhoodRow{}
	err := q.Order("neighborhoods.name").Scan(&rows).Error
	return rows, err
}

func (s *Service) GetNeighborhood(ctx context.Context, id uint) (*NeighborhoodRow, error) {
	var rows []NeighborhoodRow
	if err := s.neighborhoodQuery(ctx).Where("neighborhoods.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errNeighborhoodNotFound
	}
	return &rows[0], nil
}

func (s *Service) validateNeighborhood(ctx context.Context, in *NeighborhoodInput, excludeID uint) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || !in.CityID.Valid {
		return common.BadRequest("Nome e cidade são obrigatórios")
	}

	db := s.db.WithContext(ctx)
	var cities int64
	if err := db.Model(&models.City{}).Where("id = ?", in.CityID.Value).Count(&cities).Error; err != nil {
		return err
	}
	if cities == 0 {
		return common.BadRequest("Cidade não encontrada")
	}

	var count int64
	err := db.Model(&models.Neighborhood{}).
		Where("name = ? AND city_id = ? AND id <> ?", in.Name, in.CityID.Value, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return common.Conflict("Já existe um bairro com este nome nesta cidade")
	}
	return nil
}

func (s *Service) CreateNeighborhood(ctx context.Context, in NeighborhoodInput) (*models.Neighborhood, error) {
	if err := s.validateNeighborhood(ctx, &in, 0); err != nil {
		return nil, err
	}

	n := models.Neighborhood{Name: in.Name, CityID: in.CityID.Value}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		if common.IsUniqueViolation(err) {
			return nil, common.Conflict("Já existe um bairro com este nome nesta cidade")
		}
		return nil, err
	}
	return &n, nil
}

func (s *Service) UpdateNeighborhood(ctx context.Context, id uint, in NeighborhoodInput) (*models.Neighborhood, error) {
	var n models.Neighborhood
	if err := s.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFoundOr(err, errNeighborhoodNotFound)
	}
	if err := s.validateNeighborhood(ctx, &in, id); err != nil {
		return nil, err
	}

	n.Name = in.Name
	n.CityID = in.CityID.Value
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&n).Error; err != nil {
			return err
		}
		return tx.Model(&models.Property{}).Where("neighborhood_id = ?", id).Update("neighborhood", n.Name).Error
	})
	if err != nil {
		if common.IsUniqueViolation(err) {
			return nil, common.Conflict("Já existe um bairro com este nome nesta cidade")
		}
		return nil, err
	}
	return &n, nil
}

// DeleteNeighborhood recusa a exclusão enquanto algum imóvel apontar para o
// bairro, pelo id ou pelo nome gravado no texto livre (comparação exata).
func (s *Service) DeleteNeighborhood(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n models.Neighborhood
		if err := tx.First(&n, id).Error; err != nil {
			return notFoundOr(err, errNeighborhoodNotFound)
		}

		var properties int64
		err := tx.Model(&models.Property{}).
			Where("neighborhood_id = ? OR neighborhood = ?", id, n.Name).
			Count(&properties).Error
		if err != nil {
			return err
		}
		if properties > 0 {
			return common.Conflict("Não é possível excluir o bairro pois existem imóveis vinculados a ele")
		}

		return tx.Delete(&n).Error
	})
}

// Resolve encontra os ids de cidade e bairro a partir dos nomes livres de um imóvel.
// Nomes sem correspondência devolvem nil.
func (s *Service) Resolve(ctx context.Context, cityName, neighborhoodName string) (cityID, neighborhoodID *uint, err error) {
	return ResolveTx(s.db.WithContext(ctx), cityName, neighborhoodName)
}

// ResolveTx é o Resolve usado dentro de uma transação já aberta.
func ResolveTx(tx *gorm.DB, cityName, neighborhoodName string) (cityID, neighborhoodID *uint, err error) {
	var city models.City
	err = tx.Where("name = ?", cityName).Order("id").Limit(1).Find(&city).Error
	if err != nil {
		return nil, nil, err
	}
	if city.ID == 0 {
		// bairro só vale dentro da cidade informada
		return nil, nil, nil
	}
	cityID = &city.ID

	var n models.Neighborhood
	err = tx.Where("name = ? AND city_id = ?", neighborhoodName, city.ID).Order("id").Limit(1).Find(&n).Error
	if err != nil {
		return nil, nil, err
	}
	if n.ID != 0 {
		neighborhoodID = &n.ID
	}
	return cityID, neighborhoodID, nil
}
