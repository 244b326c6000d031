package types

import "time"

type User struct {
	ID           string     `db:"id" json:"id"`
	FullName     string     `db:"full_name" json:"fullname"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Gender       string     `db:"gender" json:"gender"`
	BloodGroup   BloodGroup `db:"blood_group" json:"bloodgroup"`
	City         City       `db:"city" json:"city"`
	Phone        string     `db:"phone" json:"phone"`
	Age          int        `db:"age" json:"age"`
	Address      string     `db:"address" json:"address"`
	IsAdmin      bool       `db:"is_admin" json:"admin"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

type SignupInput struct {
	FullName        string `form:"fullname" json:"fullname"`
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`
	Gender          string `form:"gender" json:"gender"`
	BloodGroup      string `form:"bloodgroup" json:"bloodgroup"`
	City            string `form:"city" json:"city"`
	Phone           string `form:"phone" json:"phone"`
	Age             int    `form:"age" json:"age"`
	Address         string `form:"address" json:"address"`
	Admin           bool   `form:"admin" json:"admin"`
}

type LoginInput struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// ProfileUpdate lists the fields a user may change on their own account.
type ProfileUpdate struct {
	FullName   *string `json:"fullname"`
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	Gender     *string `json:"gender"`
	BloodGroup *string `json:"bloodgroup"`
	City       *string `json:"city"`
	Phone      *string `json:"phone"`
	Age        *int    `json:"age"`
	Address    *string `json:"address"`
}
