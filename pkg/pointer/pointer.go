// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer builds pointers to literals, mostly for optional model
// fields such as avatar URLs and streak dates.
package pointer

// To returns a pointer to a copy of v.
//
//	user.AvatarURL = pointer.To(profile.AvatarURL)
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, returning the zero value when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
