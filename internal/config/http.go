package config

type HTTP struct {
	BaseURL        string   `env:"BASE_URL,expand" envDefault:"/"`
	Address        string   `env:"ADDRESS,expand" envDefault:":3003"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,expand" envDefault:"*"`
	Auth           Auth     `envPrefix:"AUTH_"`
}

type Auth struct {
	Username string `env:"USERNAME,expand"`
	Password string `env:"PASSWORD,expand"`
}
