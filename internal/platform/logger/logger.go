package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// maxTextRunes caps document text that ends up in log fields.
const maxTextRunes = 200

type Logger struct {
	SugaredLogger *zap.SugaredLogger
	san           sanitizer
}

type Config struct {
	// Mode is "production", "development" (default) or "test" (discard).
	Mode string
	// Redact masks secrets, hashes user ids and truncates document text in kv pairs.
	Redact   bool
	HashSalt string
}

// ConfigFromEnv reads LOG_REDACTION_ENABLED (default on) and LOG_HASH_SALT.
func ConfigFromEnv(mode string) Config {
	redact := true
	switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		redact = false
	}
	return Config{
		Mode:     mode,
		Redact:   redact,
		HashSalt: strings.TrimSpace(os.Getenv("LOG_HASH_SALT")),
	}
}

func New(mode string) (*Logger, error) {
	return NewWithConfig(ConfigFromEnv(mode))
}

func NewWithConfig(c Config) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(c.Mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "test", "nop", "silent":
		return Nop(), nil
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{
		SugaredLogger: zapLogger.Sugar(),
		san:           sanitizer{enabled: c.Redact, salt: c.HashSalt},
	}, nil
}

// FromZap wraps an existing zap logger, e.g. an observer core in tests.
func FromZap(z *zap.Logger, c Config) *Logger {
	return &Logger{
		SugaredLogger: z.Sugar(),
		san:           sanitizer{enabled: c.Redact, salt: c.HashSalt},
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.san.kvs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, l.san.kvs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.san.kvs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.san.kvs(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.san.kvs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(l.san.kvs(keysAndValues)...),
		san:           l.san,
	}
}

type sanitizer struct {
	enabled bool
	salt    string
}

func (s sanitizer) kvs(kv []interface{}) []interface{} {
	if len(kv) == 0 || !s.enabled {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := strings.TrimSpace(strings.ToLower(toString(kv[i])))
		out = append(out, toString(kv[i]), s.value(key, kv[i+1]))
	}
	return out
}

func (s sanitizer) value(key string, val interface{}) interface{} {
	if key == "" {
		return val
	}
	switch {
	case isRedactKey(key):
		return "[REDACTED]"
	case isHashKey(key):
		return s.hash(val)
	case isTextKey(key):
		if str, ok := val.(string); ok {
			return truncate(str)
		}
	}
	if m, ok := val.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[k] = s.value(strings.TrimSpace(strings.ToLower(k)), v)
		}
		return out
	}
	return val
}

func (s sanitizer) hash(val interface{}) string {
	raw := toString(val)
	if raw == "" || raw == "<nil>" {
		return ""
	}
	h := sha256.New()
	if s.salt != "" {
		_, _ = h.Write([]byte(s.salt))
	}
	_, _ = h.Write([]byte(raw))
	sum := hex.EncodeToString(h.Sum(nil))
	if len(sum) > 12 {
		sum = sum[:12]
	}
	return "hash:" + sum
}

func isRedactKey(key string) bool {
	switch {
	case strings.Contains(key, "token"),
		strings.Contains(key, "authorization"),
		strings.Contains(key, "password"),
		strings.Contains(key, "secret"),
		strings.Contains(key, "api_key"),
		strings.Contains(key, "apikey"),
		strings.Contains(key, "credentials"),
		strings.Contains(key, "dsn"):
		return true
	default:
		return false
	}
}

func isHashKey(key string) bool {
	return strings.Contains(key, "user_id") || strings.Contains(key, "created_by")
}

// document bodies and OCR output
func isTextKey(key string) bool {
	return key == "content" || key == "text" || strings.HasSuffix(key, "_text")
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxTextRunes {
		return s
	}
	r := []rune(s)
	return fmt.Sprintf("%s…(%d chars)", string(r[:maxTextRunes]), len(r))
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
