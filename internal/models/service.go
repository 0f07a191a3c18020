package models

// Service описывает услугу из прайс-листа. ID — стабильный ключ для
// callback-данных, Name — отображаемое название, Price в сумах.
type Service struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Price int64  `yaml:"price" json:"price"`
}
