package db

import "time"

type RoleModel struct {
	ID          int64                `gorm:"primaryKey"`
	Permission  string               `gorm:"uniqueIndex;not null"`
	Authorities []RoleAuthorityModel `gorm:"foreignKey:RoleID"`
}

func (RoleModel) TableName() string {
	return "roles"
}

type RoleAuthorityModel struct {
	RoleID    int64  `gorm:"primaryKey"`
	Authority string `gorm:"primaryKey"`
}

func (RoleAuthorityModel) TableName() string {
	return "role_authorities"
}

type UserModel struct {
	ID        int64     `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Password  string    `gorm:"not null"`
	RoleID    int64     `gorm:"not null"`
	Role      RoleModel `gorm:"foreignKey:RoleID"`
	CreatedAt time.Time `gorm:"not null"`
	// TokenVersion only changes through BumpTokenVersion.
	TokenVersion int64 `gorm:"not null;default:0;->"`
}

func (UserModel) TableName() string {
	return "users"
}

// TokenModel stores one issued access token. AccessTokenTTL is in
// milliseconds.
type TokenModel struct {
	ID             int64     `gorm:"primaryKey"`
	TokenType      string    `gorm:"not null"`
	AccessToken    string    `gorm:"uniqueIndex;not null"`
	AccessTokenTTL int64     `gorm:"column:access_token_ttl;not null"`
	IssuedAt       time.Time `gorm:"not null"`
	Revoked        bool      `gorm:"not null"`
	Expired        bool      `gorm:"not null"`
	UserID         int64     `gorm:"index;not null"`
}

func (TokenModel) TableName() string {
	return "tokens"
}
