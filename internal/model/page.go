// Package model はドメインモデルを定義する。
package model

import "time"

// Page はWikiページを表す。
// Slugはページの一意な識別子であり、URLと表示タイトルに使用される。
type Page struct {
	ID       int64
	Slug     string
	Title    string
	Content  string // Markdown
	AuthorID int64
	// AuthorUsername はusersテーブルとLEFT JOINして取得される。
	// 作成者が存在しない場合は空文字列になる。
	AuthorUsername string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Comment はWikiページに付けられたコメントを表す。
// 作成後は変更・削除されない。
type Comment struct {
	ID             int64
	PageSlug       string
	AuthorID       int64
	AuthorUsername string
	Content        string
	CreatedAt      time.Time
}
