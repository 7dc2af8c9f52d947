// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package problem

import (
	"strings"

	"github.com/taibuivan/mathlab/internal/platform/constants"
)

// IsCorrect compares answers ignoring surrounding whitespace and letter case.
// No other normalization is applied, so "0.5" and "1/2" differ.
func IsCorrect(answer, correct string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == strings.ToLower(strings.TrimSpace(correct))
}

// EarnedXP applies the hint penalty to a reward. Each hint removes
// HintPenaltyPercent of the reward, rounding down, and the result never
// drops below zero. Wrong answers earn nothing.
func EarnedXP(reward int, correct bool, hintsUsed int) int {
	if !correct || reward <= 0 {
		return 0
	}
	if hintsUsed <= 0 {
		return reward
	}
	if hintsUsed >= 100/constants.HintPenaltyPercent {
		return 0
	}

	remaining := 100 - constants.HintPenaltyPercent*hintsUsed
	if remaining <= 0 {
		return 0
	}
	return reward * remaining / 100
}
