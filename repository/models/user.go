package models

import "time"

// User is an API consumer of the mobile endpoints, authenticated by API key.
type User struct {
	Email          string    `gorm:"column:email;primaryKey;type:varchar(140)"`
	FullName       string    `gorm:"column:full_name;type:varchar(140)"`
	APIKey         string    `gorm:"column:api_key;type:varchar(64);uniqueIndex;not null"`
	DefaultCompany string    `gorm:"column:default_company;type:varchar(140)"`
	Enabled        bool      `gorm:"column:enabled;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`

	Roles []Role `gorm:"many2many:user_roles;"`
}

func (User) TableName() string {
	return "users"
}

// Role groups document permissions. A user holds the union of the grants
// of all their roles.
type Role struct {
	Name string `gorm:"column:name;primaryKey;type:varchar(50)"`

	Permissions []RolePermission `gorm:"foreignKey:Role"`
}

func (Role) TableName() string {
	return "roles"
}

// RolePermission grants a role a set of operations on one doctype.
type RolePermission struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Role      string `gorm:"column:role;type:varchar(50);index;not null"`
	Doctype   string `gorm:"column:doctype;type:varchar(50);index;not null"`
	CanRead   bool   `gorm:"column:can_read;default:false"`
	CanWrite  bool   `gorm:"column:can_write;default:false"`
	CanCreate bool   `gorm:"column:can_create;default:false"`
	CanSubmit bool   `gorm:"column:can_submit;default:false"`
	CanDelete bool   `gorm:"column:can_delete;default:false"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
