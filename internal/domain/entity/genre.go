// Package entity 定义领域实体
package entity

import "slices"

var knownGenres = []string{
	"Science Fiction",
	"Fantasy",
	"Mystery",
	"Thriller",
	"Romance",
	"Historical Fiction",
	"Horror",
	"Classic Literature",
	"Adventure",
}

// KnownGenres 返回固定的类型列表
func KnownGenres() []string {
	return slices.Clone(knownGenres)
}

// IsKnownGenre 类型名区分大小写
func IsKnownGenre(genre string) bool {
	return slices.Contains(knownGenres, genre)
}
