// internal/model/authmodel/user_models.go - 本地会话相关的数据模型
package authmodel

import "strings"

// User 登录用户的资料快照
type User struct {
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

// FullName 返回 "名 姓"
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AuthRecord 本地持久化的会话记录: token + 用户资料
// 要么完整存在,要么完全不存在。
type AuthRecord struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Valid 判断记录是否完整
func (r AuthRecord) Valid() bool {
	return strings.TrimSpace(r.Token) != "" && strings.TrimSpace(r.User.Email) != ""
}
