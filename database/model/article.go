// Package model holds the entities persisted by the press store.
package model

import "gorm.io/datatypes"

// Article is a published piece of editorial content. Body keeps paragraphs in
// rendering order.
type Article struct {
	Id        int                         `json:"id" gorm:"primaryKey;autoIncrement"`
	Slug      string                      `json:"slug" gorm:"uniqueIndex;not null"`
	Title     string                      `json:"title" gorm:"not null"`
	Body      datatypes.JSONSlice[string] `json:"body" gorm:"not null"`
	IsActive  bool                        `json:"isActive" gorm:"not null;index"`
	Image     *string                     `json:"image"`
	CreatedAt int64                       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt int64                       `json:"updatedAt" gorm:"autoUpdateTime"`
}
