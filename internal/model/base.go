package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// ── 角色 ──

const (
	RoleDirector  = "director"
	RoleGSO       = "gso"
	RoleUnitHead  = "unit_head"
	RolePersonnel = "personnel"
	RoleRequestor = "requestor"
)

// ── 账号状态 ──

const (
	AccountActive   = "active"
	AccountInactive = "inactive"
)
