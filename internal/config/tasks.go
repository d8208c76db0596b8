package config

type Tasks struct {
	DefaultLimit  int `env:"DEFAULT_LIMIT,expand" envDefault:"10"`
	DefaultOffset int `env:"DEFAULT_OFFSET,expand" envDefault:"0"`
}
