package admin

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"versare/common"
	"versare/models"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

var (
	errUserNotFound      = common.NotFound("Usuário não encontrado")
	errDuplicateUsername = common.Conflict("Já existe um usuário com este nome de usuário")
	errDuplicateEmail    = common.Conflict("Já existe um usuário com este email")
)

type UserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (in *UserInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	if in.Role == "" {
		in.Role = RoleAdmin
	}
}

func (in UserInput) validRole() error {
	if in.Role != RoleAdmin && in.Role != RoleEditor {
		return common.BadRequest("Perfil inválido")
	}
	return nil
}

func optionalEmail(email string) *string {
	if email == "" {
		return nil
	}
	return &email
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) usernameTaken(tx *gorm.DB, username string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.User{}).Where("username = ? AND id <> ?", username, exceptID).Count(&count).Error
	return count > 0, err
}

func (s *AuthService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	in.normalize()
	if in.Username == "" || in.Password == "" || in.Name == "" {
		return nil, common.BadRequest("Nome de usuário, senha e nome são obrigatórios")
	}
	if err := in.validRole(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	taken, err := s.usernameTaken(db, in.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errDuplicateUsername
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, common.Internal("Erro ao gerar hash da senha", err)
	}

	user := models.User{
		Username: in.Username,
		Password: hash,
		Name:     in.Name,
		Email:    optionalEmail(in.Email),
		Role:     in.Role,
	}
	if err := db.Create(&user).Error; err != nil {
		if common.IsUniqueViolation(err) {
			return nil, errDuplicateEmail
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser altera nome, email, perfil e usuário. A senha só muda se vier preenchida.
func (s *AuthService) UpdateUser(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	in.normalize()
	if in.Username == "" || in.Name == "" {
		return nil, common.BadRequest("Nome de usuário e nome são obrigatórios")
	}
	if err := in.validRole(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}

	taken, err := s.usernameTaken(db, in.Username, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errDuplicateUsername
	}

	updates := map[string]interface{}{
		"username": in.Username,
		"name":     in.Name,
		"email":    optionalEmail(in.Email),
		"role":     in.Role,
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, common.Internal("Erro ao gerar hash da senha", err)
		}
		updates["password"] = hash
	}

	if err := db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if common.IsUniqueViolation(err) {
			return nil, errDuplicateEmail
		}
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser remove o usuário e as sessões dele. Ninguém remove a si mesmo
// e o último usuário não pode ser removido.
func (s *AuthService) DeleteUser(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return common.BadRequest("Você não pode remover seu próprio usuário")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUserNotFound
			}
			return err
		}

		var total int64
		if err := tx.Model(&models.User{}).Count(&total).Error; err != nil {
			return err
		}
		if total <= 1 {
			return common.BadRequest("Não é possível remover o último usuário")
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
