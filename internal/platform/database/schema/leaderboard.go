// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// LeaderboardTable represents the 'leaderboard' table
type LeaderboardTable struct {
	Table        string
	ID           string
	UserID       string
	League       string
	WeeklyXP     string
	RankPosition string
	WeekStart    string
	WeekEnd      string
	UpdatedAt    string
}

// Leaderboard is the schema definition for leaderboard
var Leaderboard = LeaderboardTable{
	Table:        "leaderboard",
	ID:           "id",
	UserID:       "user_id",
	League:       "league",
	WeeklyXP:     "weekly_xp",
	RankPosition: "rank_position",
	WeekStart:    "week_start",
	WeekEnd:      "week_end",
	UpdatedAt:    "updated_at",
}

// Columns returns all standard column names
func (t LeaderboardTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.League, t.WeeklyXP, t.RankPosition,
		t.WeekStart, t.WeekEnd, t.UpdatedAt,
	}
}
