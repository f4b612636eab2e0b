// Package model はドメインモデルを定義する。
package model

import "time"

// User はWikiに登録されたユーザーを表す。
// 登録後はイミュータブルとして扱う。
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
