package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name         string
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string // empty for accounts created via batch membership import
}
