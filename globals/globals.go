package globals

var (
	// Overridden from JWT_SECRET in main once the environment is loaded.
	JwtSecret = []byte("your_secret_key")
)

// Context keys
type ContextKey string

const UserKey ContextKey = "user"
