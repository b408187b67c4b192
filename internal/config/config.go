package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables

    "github.com/joho/godotenv" // godotenv populates the environment from a local .env file
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets and connection details are required;
// everything else has a default suitable for local development.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    LogLevel       string // logrus level name (debug, info, warn, error)
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing
    UploadDir      string // directory room images are written to
    UploadURL      string // public URL prefix the upload directory is served under
    AdminEmail     string // bootstrap admin account email (optional)
    AdminPassword  string // bootstrap admin account password (optional)
    AdminName      string // bootstrap admin display name
    CORSOrigins    string // comma separated list of allowed origins
}

// LoadDotEnv reads a .env file into the process environment when one is
// present.  Variables that are already set win over the file.
func LoadDotEnv(paths ...string) {
    if err := godotenv.Load(paths...); err != nil && !os.IsNotExist(err) {
        log.Printf("config: .env not loaded: %v", err)
    }
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:            getenv("APP_ENV", "dev"),
        Port:           getenv("APP_PORT", "8080"),
        LogLevel:       getenv("LOG_LEVEL", "info"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         getenv("DB_PORT", "3306"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60),
        RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
        BcryptCost:     envInt("BCRYPT_COST", 10),
        UploadDir:      getenv("UPLOAD_DIR", "public/uploads"),
        UploadURL:      getenv("UPLOAD_URL", "/uploads"),
        AdminEmail:     os.Getenv("ADMIN_EMAIL"),
        AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
        AdminName:      getenv("ADMIN_NAME", "Administrator"),
        CORSOrigins:    getenv("CORS_ORIGINS", "*"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
