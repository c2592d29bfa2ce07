package entity

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type User struct {
	Base
	Name   string  `db:"name"`
	Email  string  `db:"email"`
	Level  float64 `db:"level"`
	Gender Gender  `db:"gender"`
	Active bool    `db:"active"`
}
