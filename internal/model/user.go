package model

// User 用户模型，由外部创建，接口只读
type User struct {
	ID         int64  `db:"id_usuario" json:"id"`
	Username   string `db:"username" json:"username"`
	Credential string `db:"contrasenia_hash" json:"-"` // bcrypt 哈希或历史遗留的明文
	IsAdmin    bool   `db:"is_admin" json:"is_admin"`
}
