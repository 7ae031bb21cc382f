package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	FileBasePath string // course materials on disk

	AuthSecret  string
	TokenTTLHrs int
	BcryptCost  int

	AdminUser string
	AdminPass string // bootstrap admin password, hashed on first start

	RoleCodeHrs int // default validity of generated role codes

	CORSOrigins  []string
	EnableSignup bool // POST /auth/register
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:     addr,
		PublicURL:    os.Getenv("PUBLIC_URL"),
		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		DBDSN:        envOr("DB_DSN", ""),
		FileBasePath: envOr("FILE_BASE_PATH", "./data"),
		AuthSecret:   envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTLHrs:  envInt("TOKEN_TTL_HOURS", 8),
		BcryptCost:   envInt("BCRYPT_COST", 12),
		AdminUser:    envOr("ADMIN_USER", "admin"),
		AdminPass:    envOr("ADMIN_PASS", "admin"),
		RoleCodeHrs:  envInt("ROLE_CODE_TTL_HOURS", 24),
		CORSOrigins:  csvOr("CORS_ORIGINS", "http://localhost:3000"),
		EnableSignup: envBool("ENABLE_SIGNUP", true),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil && v > 0 {
		return v
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
