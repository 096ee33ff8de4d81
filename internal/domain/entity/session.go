package entity

import "time"

// Session sesión de consola persistida: usuario serializado y access token del backend.
type Session struct {
	ID          string    `json:"id"`
	User        User      `json:"user"`
	AccessToken string    `json:"accessToken"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
