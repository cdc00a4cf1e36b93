package models

import "time"

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"type:varchar(255);unique;not null" json:"name"`
	Role      string `gorm:"type:varchar(50);not null" json:"role"`
	PinSalt   string `gorm:"type:varchar(64);not null" json:"-"`
	PinHash   string `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
