// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds table and column names for the MathLab database so
// repositories never spell identifiers by hand.
package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table          string
	ID             string
	Email          string
	DisplayName    string
	PasswordHash   string
	AuthProvider   string
	AuthProviderID string
	Level          string
	XP             string
	StreakDays     string
	Hearts         string
	LastStreakDate string
	CurrentGrade   string
	AvatarURL      string
	CreatedAt      string
	UpdatedAt      string
	LastLoginAt    string
	IsActive       string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:          "users",
	ID:             "id",
	Email:          "email",
	DisplayName:    "display_name",
	PasswordHash:   "password_hash",
	AuthProvider:   "auth_provider",
	AuthProviderID: "auth_provider_id",
	Level:          "level",
	XP:             "xp",
	StreakDays:     "streak_days",
	Hearts:         "hearts",
	LastStreakDate: "last_streak_date",
	CurrentGrade:   "current_grade",
	AvatarURL:      "avatar_url",
	CreatedAt:      "created_at",
	UpdatedAt:      "updated_at",
	LastLoginAt:    "last_login_at",
	IsActive:       "is_active",
}

// Columns returns all standard column names
func (t UsersTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.DisplayName, t.PasswordHash, t.AuthProvider, t.AuthProviderID,
		t.Level, t.XP, t.StreakDays, t.Hearts, t.LastStreakDate, t.CurrentGrade,
		t.AvatarURL, t.CreatedAt, t.UpdatedAt, t.LastLoginAt, t.IsActive,
	}
}
