package models

import "time"

const (
	PropertyTypeSale   = "venda"
	PropertyTypeRent   = "aluguel"
	PropertyTypeLaunch = "lancamento"

	PropertyStatusActive   = "ativo"
	PropertyStatusInactive = "inativo"
	PropertyStatusSold     = "vendido"

	LeadStatusNew        = "novo"
	LeadStatusInProgress = "em_andamento"
	LeadStatusResponded  = "respondido"
	LeadStatusArchived   = "arquivado"
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"` // hash bcrypt, nunca sai na API
	Name      string    `gorm:"not null" json:"name"`
	Email     *string   `gorm:"unique" json:"email"`
	Role      string    `gorm:"not null;default:'admin'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Session é a sessão emitida no login. O token assinado só vale enquanto a linha existir.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type State struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"unique;not null" json:"name"`
	Abbreviation string    `gorm:"unique;not null" json:"abbreviation"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type City struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_city_name_state" json:"name"`
	StateID   uint      `gorm:"not null;index;uniqueIndex:idx_city_name_state" json:"state_id"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Neighborhood struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_neighborhood_name_city" json:"name"`
	CityID    uint      `gorm:"not null;index;uniqueIndex:idx_neighborhood_name_city" json:"city_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Property struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code         string  `gorm:"unique;not null" json:"code"`
	Title        string  `gorm:"not null" json:"title"`
	Type         string  `gorm:"not null;index" json:"type"`
	PropertyType string  `gorm:"not null" json:"property_type"`
	Price        float64 `gorm:"not null;index" json:"price"`
	Status       string  `gorm:"not null;index" json:"status"`

	// Texto livre exibido no site; city_id/neighborhood_id apontam para a hierarquia
	Neighborhood   string `gorm:"not null;index" json:"neighborhood"`
	City           string `gorm:"not null;index" json:"city"`
	CityID         *uint  `gorm:"index" json:"city_id"`
	NeighborhoodID *uint  `gorm:"index" json:"neighborhood_id"`

	Address       *string   `json:"address"`
	PostalCode    *string   `json:"postal_code"`
	Area          *int      `json:"area"`
	Bedrooms      *int      `json:"bedrooms"`
	Bathrooms     *int      `json:"bathrooms"`
	ParkingSpaces *int      `json:"parking_spaces"`
	Suites        *int      `json:"suites"`
	Furnished     *string   `json:"furnished"`
	Description   *string   `gorm:"type:text" json:"description"`
	Featured      bool      `gorm:"default:false;index" json:"featured"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type PropertyAmenity struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint   `gorm:"not null;index" json:"property_id"`
	Name       string `gorm:"not null" json:"name"`
}

type PropertyImage struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint   `gorm:"not null;index" json:"property_id"`
	ImageURL   string `gorm:"not null" json:"image_url"`
	IsMain     bool   `gorm:"default:false" json:"is_main"`
}

type PropertyVideo struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	VideoURL   string    `gorm:"not null" json:"video_url"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
}

type Contact struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"not null" json:"email"`
	Phone      string    `gorm:"not null" json:"phone"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	PropertyID *uint     `gorm:"index" json:"property_id"`
	Status     string    `gorm:"not null;default:'novo';index" json:"status"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// WhatsappMessage guarda uma cópia dos dados do imóvel no momento do envio.
type WhatsappMessage struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string     `gorm:"not null" json:"name"`
	Phone         string     `gorm:"not null" json:"phone"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	PropertyID    *uint      `gorm:"index" json:"property_id"`
	PropertyTitle string     `gorm:"not null" json:"property_title"`
	PropertyCode  string     `gorm:"not null" json:"property_code"`
	PropertyType  string     `gorm:"not null" json:"property_type"`
	PropertyPrice float64    `gorm:"not null" json:"property_price"`
	Status        string     `gorm:"not null;default:'novo';index" json:"status"`
	Viewed        bool       `gorm:"default:false;index" json:"viewed"`
	ViewedAt      *time.Time `json:"viewed_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
}

type Setting struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"unique;not null" json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
