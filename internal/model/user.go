package model

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// User 只保留成就引擎需要的身份信息，认证由外部系统负责
// swagger:model User
type User struct {
	BaseModel
	Email     string   `gorm:"size:120;unique;not null" json:"email"`
	FirstName string   `gorm:"size:50;not null" json:"firstName"`
	LastName  string   `gorm:"size:50;not null" json:"lastName"`
	Role      UserRole `gorm:"size:20;default:'student'" json:"role"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
