package properties

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"versare/common"
	"versare/models"
)

const maxImagesPerUpload = 10

var (
	errImageNotFound = common.NotFound("Imagem não encontrada para este imóvel")
	errVideoNotFound = common.NotFound("Vídeo não encontrado para este imóvel")
)

type VideoInput struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (s *Service) ensureExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Property{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errPropertyNotFound
	}
	return nil
}

// Imagens

func (s *Service) ListImages(ctx context.Context, id uint) ([]models.PropertyImage, error) {
	db := s.db.WithContext(ctx)
	if err := s.ensureExists(db, id); err != nil {
		return nil, err
	}

	images := []models.PropertyImage{}
	err := db.Where("property_id = ?", id).Order("is_main DESC, id").Find(&images).Error
	return images, err
}

// UploadImages grava os arquivos e insere as linhas numa transação. A primeira
// imagem só vira principal quando o imóvel ainda não tem nenhuma; lotes
// seguintes nunca tomam o lugar da principal.
func (s *Service) UploadImages(ctx context.Context, id uint, files []*multipart.FileHeader) ([]models.PropertyImage, error) {
	if len(files) == 0 {
		return nil, common.BadRequest("Nenhuma imagem enviada")
	}
	if len(files) > maxImagesPerUpload {
		return nil, common.BadRequest("Envie no máximo 10 imagens por vez")
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureExists(db, id); err != nil {
		return nil, err
	}

	urls, err := s.files.SaveAll(files)
	if err != nil {
		return nil, common.Internal("Erro ao salvar imagens", err)
	}

	images := make([]models.PropertyImage, 0, len(urls))
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.PropertyImage{}).Where("property_id = ?", id).Count(&existing).Error; err != nil {
			return err
		}

		for i, url := range urls {
			images = append(images, models.PropertyImage{
				PropertyID: id,
				ImageURL:   url,
				IsMain:     i == 0 && existing == 0,
			})
		}
		return tx.Create(&images).Error
	})
	if err != nil {
		s.files.RemoveAll(urls)
		return nil, err
	}

	return images, nil
}

// DeleteImage remove a imagem do imóvel. Se era a principal, a mais antiga
// das restantes assume o lugar.
func (s *Service) DeleteImage(ctx context.Context, id, imageID uint) error {
	var image models.PropertyImage

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND property_id = ?", imageID, id).First(&image).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errImageNotFound
			}
			return err
		}

		if err := tx.Delete(&image).Error; err != nil {
			return err
		}
		if !image.IsMain {
			return nil
		}

		var next models.PropertyImage
		if err := tx.Where("property_id = ?", id).Order("id").Limit(1).Find(&next).Error; err != nil {
			return err
		}
		if next.ID == 0 {
			return nil
		}
		return tx.Model(&next).Update("is_main", true).Error
	})
	if err != nil {
		return err
	}

	if err := s.files.Remove(image.ImageURL); err != nil {
		common.Logger.WithError(err).WithField("image", image.ImageURL).Warn("Erro ao remover arquivo da imagem")
	}
	return nil
}

// SetMainImage marca a imagem como principal e desmarca as demais do imóvel.
func (s *Service) SetMainImage(ctx context.Context, id, imageID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PropertyImage{}).Where("id = ? AND property_id = ?", imageID, id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errImageNotFound
		}

		if err := tx.Model(&models.PropertyImage{}).Where("property_id = ? AND id <> ?", id, imageID).Update("is_main", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.PropertyImage{}).Where("id = ?", imageID).Update("is_main", true).Error
	})
}

// Vídeos

func (s *Service) ListVideos(ctx context.Context, id uint) ([]models.PropertyVideo, error) {
	db := s.db.WithContext(ctx)
	if err := s.ensureExists(db, id); err != nil {
		return nil, err
	}

	videos := []models.PropertyVideo{}
	err := db.Where("property_id = ?", id).Order("id").Find(&videos).Error
	return videos, err
}

// AddVideos insere os vídeos enviados; itens sem url são ignorados.
func (s *Service) AddVideos(ctx context.Context, id uint, in []VideoInput) ([]models.PropertyVideo, error) {
	if len(in) == 0 {
		return nil, common.BadRequest("Nenhum vídeo válido enviado")
	}

	videos := []models.PropertyVideo{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureExists(tx, id); err != nil {
			return err
		}

		for _, v := range in {
			url := strings.TrimSpace(v.URL)
			if url == "" {
				common.Logger.WithField("property_id", id).Debug("vídeo sem url ignorado")
				continue
			}
			videos = append(videos, models.PropertyVideo{
				PropertyID: id,
				VideoURL:   url,
				Title:      strings.TrimSpace(v.Title),
			})
		}
		if len(videos) == 0 {
			return nil
		}
		return tx.Create(&videos).Error
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (s *Service) DeleteVideo(ctx context.Context, id, videoID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND property_id = ?", videoID, id).Delete(&models.PropertyVideo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errVideoNotFound
	}
	return nil
}
