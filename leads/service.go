package leads

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"versare/common"
	"versare/models"
)

var (
	errContactNotFound  = common.NotFound("Contato não encontrado")
	errWhatsappNotFound = common.NotFound("Mensagem não encontrada")
)

// Notifier avisa a equipe sobre um lead novo. As implementações não devem bloquear.
type Notifier interface {
	NotifyContact(contact models.Contact)
	NotifyWhatsapp(message models.WhatsappMessage)
}

type Service struct {
	db       *gorm.DB
	notifier Notifier
}

func NewService(db *gorm.DB, notifier Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

type ContactInput struct {
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Message    string       `json:"message"`
	PropertyID common.OptID `json:"property_id"`
}

// ContactRow é o contato com título e código do imóvel, quando houver.
type ContactRow struct {
	models.Contact
	PropertyTitle *string `json:"property_title"`
	PropertyCode  *string `json:"property_code"`
}

type WhatsappInput struct {
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Message       string          `json:"message"`
	PropertyID    common.OptID    `json:"property_id"`
	PropertyTitle string          `json:"property_title"`
	PropertyCode  string          `json:"property_code"`
	PropertyType  string          `json:"property_type"`
	PropertyPrice common.OptFloat `json:"property_price"`
}

func validStatus(status string) error {
	switch status {
	case "":
		return common.BadRequest("Status é obrigatório")
	case models.LeadStatusNew, models.LeadStatusInProgress, models.LeadStatusResponded, models.LeadStatusArchived:
		return nil
	default:
		return common.BadRequest("Status inválido")
	}
}

// Contatos

func (s *Service) CreateContact(ctx context.Context, in ContactInput) (*models.Contact, error) {
	contact := models.Contact{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Message:    strings.TrimSpace(in.Message),
		PropertyID: in.PropertyID.Ptr(),
		Status:     models.LeadStatusNew,
	}
	if contact.Name == "" || contact.Email == "" || contact.Phone == "" || contact.Message == "" {
		return nil, common.BadRequest("Todos os campos são obrigatórios")
	}

	if err := s.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyContact(contact)
	}
	return &contact, nil
}

func (s *Service) contactQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table("contacts").
		Select("contacts.*, properties.title AS property_title, properties.code AS property_code").
		Joins("LEFT JOIN properties ON properties.id = contacts.property_id")
}

func (s *Service) ListContacts(ctx context.Context, status string) ([]ContactRow, error) {
	q := s.contactQuery(ctx)
	if status != "" {
		q = q.Where("contacts.status = ?", status)
	}

	rows := []ContactRow{}
	err := q.Order("contacts.created_at DESC, contacts.id DESC").Scan(&rows).Error
	return rows, err
}

func (s *Service) GetContact(ctx context.Context, id uint) (*ContactRow, error) {
	var rows []ContactRow
	if err := s.contactQuery(ctx).Where("contacts.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errContactNotFound
	}
	return &rows[0], nil
}

func (s *Service) UpdateContactStatus(ctx context.Context, id uint, status string) error {
	status = strings.TrimSpace(status)
	if err := validStatus(status); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&models.Contact{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errContactNotFound
	}
	return nil
}

// MarkContactRead tira o contato de "novo". Contatos já em outro status
// ficam como estão.
func (s *Service) MarkContactRead(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	err := db.Model(&models.Contact{}).
		Where("id = ? AND status = ?", id, models.LeadStatusNew).
		Update("status", models.LeadStatusInProgress).Error
	if err != nil {
		return err
	}
	_, err = s.GetContact(ctx, id)
	return err
}

func (s *Service) DeleteContact(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Contact{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errContactNotFound
	}
	return nil
}

// WhatsApp

// CreateWhatsappMessage grava o lead com a cópia dos dados do imóvel enviada
// pelo site. Os dados não são conferidos com o cadastro atual.
func (s *Service) CreateWhatsappMessage(ctx context.Context, in WhatsappInput) (*models.WhatsappMessage, error) {
	msg := models.WhatsappMessage{
		Name:          strings.TrimSpace(in.Name),
		Phone:         strings.TrimSpace(in.Phone),
		Message:       strings.TrimSpace(in.Message),
		PropertyID:    in.PropertyID.Ptr(),
		PropertyTitle: strings.TrimSpace(in.PropertyTitle),
		PropertyCode:  strings.TrimSpace(in.PropertyCode),
		PropertyType:  strings.TrimSpace(in.PropertyType),
		PropertyPrice: in.PropertyPrice.Value,
		Status:        models.LeadStatusNew,
	}
	if msg.Name == "" || msg.Phone == "" || msg.Message == "" || msg.PropertyID == nil ||
		msg.PropertyTitle == "" || msg.PropertyCode == "" || msg.PropertyType == "" || !in.PropertyPrice.Valid {
		return nil, common.BadRequest("Todos os campos são obrigatórios")
	}

	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyWhatsapp(msg)
	}
	return &msg, nil
}

func (s *Service) ListWhatsappMessages(ctx context.Context, status string, viewed *bool) ([]models.WhatsappMessage, error) {
	q := s.db.WithContext(ctx).Model(&models.WhatsappMessage{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if viewed != nil {
		q = q.Where("viewed = ?", *viewed)
	}

	messages := []models.WhatsappMessage{}
	err := q.Order("created_at DESC, id DESC").Find(&messages).Error
	return messages, err
}

// GetWhatsappMessage só lê; marcar como visualizada é feito por MarkWhatsappViewed.
func (s *Service) GetWhatsappMessage(ctx context.Context, id uint) (*models.WhatsappMessage, error) {
	var msg models.WhatsappMessage
	if err := s.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errWhatsappNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// MarkWhatsappViewed marca a mensagem como visualizada. viewed_at guarda a
// primeira visualização e não muda nas chamadas seguintes.
func (s *Service) MarkWhatsappViewed(ctx context.Context, id uint) (*models.WhatsappMessage, error) {
	db := s.db.WithContext(ctx)

	err := db.Model(&models.WhatsappMessage{}).
		Where("id = ? AND viewed = ?", id, false).
		Updates(map[string]interface{}{"viewed": true, "viewed_at": time.Now()}).Error
	if err != nil {
		return nil, err
	}

	return s.GetWhatsappMessage(ctx, id)
}

func (s *Service) UpdateWhatsappStatus(ctx context.Context, id uint, status string) error {
	status = strings.TrimSpace(status)
	if err := validStatus(status); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&models.WhatsappMessage{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errWhatsappNotFound
	}
	return nil
}

func (s *Service) DeleteWhatsappMessage(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.WhatsappMessage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errWhatsappNotFound
	}
	return nil
}
