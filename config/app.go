package config

const (
	DefaultJWTSecret        = "dev-secret-change-me"
	DefaultMaxCommentLength = 2000
	DefaultUploadDir        = "public/uploads"
	DefaultUploadMaxMB      = 10
)

// App is the typed view of the settings the HTTP layer consumes.
type App struct {
	Port string

	AdminEmail     string
	GoogleClientID string
	JWTSecret      string
	AdminUsername  string
	AdminPassword  string

	BaseURL          string
	MaxCommentLength int

	UploadBackend string
	UploadDir     string
	UploadMaxMB   int
	S3Bucket      string
	S3PublicURL   string

	AcceptedOrigins      []string
	AuthRatePerMinute    int
	CommentRatePerMinute int

	ResendAPIKey    string
	ResendFromEmail string
}

// Load builds the App settings from an environment map produced by New.
func Load(c map[string]string) App {
	clientID := GetString(c, "GOOGLE_CLIENT_ID", "")
	if clientID == "" {
		clientID = GetString(c, "NEXT_PUBLIC_GOOGLE_CLIENT_ID", "")
	}

	maxComment := GetInt(c, "MAX_COMMENT_LENGTH", DefaultMaxCommentLength)
	if maxComment <= 0 {
		maxComment = DefaultMaxCommentLength
	}

	uploadMax := GetInt(c, "UPLOAD_MAX_MB", DefaultUploadMaxMB)
	if uploadMax <= 0 {
		uploadMax = DefaultUploadMaxMB
	}

	return App{
		Port:                 GetString(c, "PORT", "8080"),
		AdminEmail:           GetString(c, "ADMIN_EMAIL", ""),
		GoogleClientID:       clientID,
		JWTSecret:            GetString(c, "JWT_SECRET", DefaultJWTSecret),
		AdminUsername:        GetString(c, "ADMIN_USERNAME", "admin"),
		AdminPassword:        GetString(c, "ADMIN_PASSWORD", "admin"),
		BaseURL:              GetString(c, "BASE_URL", GetString(c, "NEXT_PUBLIC_BASE_URL", "")),
		MaxCommentLength:     maxComment,
		UploadBackend:        GetString(c, "UPLOAD_BACKEND", "local"),
		UploadDir:            GetString(c, "UPLOAD_DIR", DefaultUploadDir),
		UploadMaxMB:          uploadMax,
		S3Bucket:             GetString(c, "S3_BUCKET", ""),
		S3PublicURL:          GetString(c, "S3_PUBLIC_URL", ""),
		AcceptedOrigins:      GetList(c, "ACCEPTED_ORIGINS", []string{"*"}),
		AuthRatePerMinute:    GetInt(c, "AUTH_RATE_PER_MINUTE", 10),
		CommentRatePerMinute: GetInt(c, "COMMENT_RATE_PER_MINUTE", 20),
		ResendAPIKey:         GetString(c, "RESEND_API_KEY", ""),
		ResendFromEmail:      GetString(c, "RESEND_FROM_EMAIL", ""),
	}
}
