// Package auth 负责密码校验、会话令牌签发与校验以及管理员权限判断
package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 哈希固定为60个字符
const bcryptHashLen = 60

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// Credential 数据库中保存的密码凭据：Hashed 或 Plaintext
type Credential interface {
	Verify(password string) bool
	sealed()
}

// Hashed bcrypt 哈希凭据
type Hashed []byte

// Verify 常量时间比较密码与哈希
func (h Hashed) Verify(password string) bool {
	return bcrypt.CompareHashAndPassword(h, []byte(password)) == nil
}

func (Hashed) sealed() {}

// Plaintext 历史遗留的明文凭据。
// 安全隐患：仅为兼容未经哈希的种子数据，执行 `migrate -rehash` 后应不再出现。
type Plaintext string

// Verify 常量时间比较明文
func (p Plaintext) Verify(password string) bool {
	return subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1
}

func (Plaintext) sealed() {}

// ParseCredential 根据存储格式显式判断凭据类型，不依赖哈希函数报错
func ParseCredential(stored string) Credential {
	if isBcryptHash(stored) {
		return Hashed(stored)
	}
	return Plaintext(stored)
}

func isBcryptHash(s string) bool {
	if len(s) != bcryptHashLen {
		return false
	}
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// HashPassword 使用 bcrypt 默认代价生成密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
