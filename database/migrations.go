package database

import (
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"versare/common"
	"versare/models"
)

// SeedOptions controla os dados iniciais gravados depois das migrations.
type SeedOptions struct {
	AdminPassword string
	SampleData    bool
}

func RunMigrations(db *gorm.DB) error {
	common.Logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.State{},
		&models.City{},
		&models.Neighborhood{},
		&models.Property{},
		&models.PropertyAmenity{},
		&models.PropertyImage{},
		&models.PropertyVideo{},
		&models.Contact{},
		&models.WhatsappMessage{},
		&models.Setting{},
	)

	if err != nil {
		common.Logger.WithError(err).Error("Error running migrations")
		return err
	}

	if err := BackfillLocations(db); err != nil {
		common.Logger.WithError(err).Error("Error linking properties to locations")
		return err
	}

	common.Logger.Info("Migrations completed successfully")
	return nil
}

func Seed(db *gorm.DB, opts SeedOptions) error {
	if err := seedAdmin(db, opts.AdminPassword); err != nil {
		return err
	}

	if !opts.SampleData {
		return nil
	}

	var count int64
	if err := db.Model(&models.Property{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := db.Transaction(insertSampleData); err != nil {
		return err
	}

	common.Logger.WithField("properties", len(sampleProperties)).Info("Dados de exemplo inseridos com sucesso")
	return BackfillLocations(db)
}

func seedAdmin(db *gorm.DB, password string) error {
	var admin models.User
	err := db.Where("username = ?", "admin").First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	email := "admin@versare.com.br"
	admin = models.User{
		Username: "admin",
		Password: string(hash),
		Name:     "Administrador",
		Email:    &email,
		Role:     "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	common.Logger.Info("Usuário admin criado com sucesso")
	return nil
}

// BackfillLocations liga imóveis antigos (só com texto) às cidades e bairros cadastrados.
func BackfillLocations(db *gorm.DB) error {
	res := db.Exec(`UPDATE properties SET city_id = (
			SELECT cities.id FROM cities WHERE cities.name = properties.city ORDER BY cities.id LIMIT 1
		) WHERE city_id IS NULL`)
	if res.Error != nil {
		return res.Error
	}
	cities := res.RowsAffected

	res = db.Exec(`UPDATE properties SET neighborhood_id = (
			SELECT neighborhoods.id FROM neighborhoods
			WHERE neighborhoods.name = properties.neighborhood
			  AND neighborhoods.city_id = properties.city_id
			ORDER BY neighborhoods.id LIMIT 1
		) WHERE neighborhood_id IS NULL`)
	if res.Error != nil {
		return res.Error
	}

	common.Logger.WithFields(logrus.Fields{
		"cities":        cities,
		"neighborhoods": res.RowsAffected,
	}).Debug("location backfill")
	return nil
}

type sampleProperty struct {
	code, title, kind, propertyType string
	price                           float64
	status, neighborhood            string
	area, bedrooms, bathrooms       int
	parking, suites                 int
	furnished, description          string
}

var sampleProperties = []sampleProperty{
	{"VSR001", "Apartamento de Luxo no Jardim Paulista", models.PropertyTypeSale, "apartamento", 950000, models.PropertyStatusActive, "Jardim Paulista", 120, 3, 2, 2, 1, "não",
		"Lindo apartamento em localização privilegiada no Jardim Paulista, próximo a restaurantes, comércios e áreas verdes."},
	{"VSR002", "Cobertura Duplex com Vista Panorâmica", models.PropertyTypeRent, "cobertura", 8500, models.PropertyStatusActive, "Moema", 200, 4, 3, 3, 2, "sim",
		"Cobertura duplex com vista panorâmica para o bairro de Moema. Amplo terraço com churrasqueira."},
	{"VSR003", "Casa em Condomínio com Área de Lazer", models.PropertyTypeSale, "casa", 1250000, models.PropertyStatusActive, "Morumbi", 300, 4, 3, 4, 2, "não",
		"Casa espaçosa em condomínio fechado com área de lazer completa e segurança 24h."},
	{"VSR004", "Residencial Villa Moderna - Pronto para Morar", models.PropertyTypeLaunch, "apartamento", 650000, models.PropertyStatusActive, "Brooklin", 90, 2, 2, 1, 1, "não",
		"Empreendimento recém lançado com ótimas opções de lazer e localização privilegiada no Brooklin."},
	{"VSR005", "Escritório Comercial de Alto Padrão", models.PropertyTypeRent, "comercial", 12000, models.PropertyStatusInactive, "Itaim Bibi", 180, 0, 2, 3, 0, "não",
		"Escritório de alto padrão em prédio comercial com serviços completos no Itaim Bibi."},
	{"VSR006", "Apartamento Garden com Área Verde Privativa", models.PropertyTypeSale, "apartamento", 875000, models.PropertyStatusSold, "Perdizes", 150, 3, 2, 2, 1, "não",
		"Apartamento garden com área verde privativa em condomínio com infraestrutura completa."},
}

func insertSampleData(tx *gorm.DB) error {
	state := models.State{Name: "São Paulo", Abbreviation: "SP"}
	if err := tx.Where(models.State{Abbreviation: "SP"}).FirstOrCreate(&state).Error; err != nil {
		return err
	}

	city := models.City{Name: "São Paulo", StateID: state.ID}
	if err := tx.Where(models.City{Name: city.Name, StateID: state.ID}).FirstOrCreate(&city).Error; err != nil {
		return err
	}

	for _, s := range sampleProperties {
		n := models.Neighborhood{Name: s.neighborhood, CityID: city.ID}
		if err := tx.Where(models.Neighborhood{Name: n.Name, CityID: city.ID}).FirstOrCreate(&n).Error; err != nil {
			return err
		}

		area, bedrooms, bathrooms := s.area, s.bedrooms, s.bathrooms
		parking, suites := s.parking, s.suites
		furnished, description := s.furnished, s.description

		p := models.Property{
			Code:          s.code,
			Title:         s.title,
			Type:          s.kind,
			PropertyType:  s.propertyType,
			Price:         s.price,
			Status:        s.status,
			Neighborhood:  s.neighborhood,
			City:          city.Name,
			Area:          &area,
			Bedrooms:      &bedrooms,
			Bathrooms:     &bathrooms,
			ParkingSpaces: &parking,
			Suites:        &suites,
			Furnished:     &furnished,
			Description:   &description,
			Featured:      true,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
	}

	return nil
}
