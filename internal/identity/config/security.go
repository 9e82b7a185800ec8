package config

// SecurityConfig содержит параметры хеширования паролей и аудита.
type SecurityConfig struct {
	BcryptCost          int  `yaml:"bcrypt_cost" env:"IDENTITY_BCRYPT_COST" env-default:"10"`
	AuditAuthentication bool `yaml:"audit_authentication" env:"IDENTITY_AUDIT_AUTHENTICATION" env-default:"false"`
}
