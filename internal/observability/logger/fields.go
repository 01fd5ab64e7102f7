package logger

import "go.uber.org/zap"

// Campos estándar HTTP.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// Campos de negocio.

func UserID(v string) zap.Field   { return zap.String("user_id", v) }
func Email(v string) zap.Field    { return zap.String("email", v) }
func Provider(v string) zap.Field { return zap.String("provider", v) }

// Campos de arquitectura: identifican capa y componente en cada línea.

func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }

// Genéricos.

func Err(err error) zap.Field       { return zap.Error(err) }
func String(k, v string) zap.Field  { return zap.String(k, v) }
func Int(k string, v int) zap.Field { return zap.Int(k, v) }
func Bool(k string, v bool) zap.Field {
	return zap.Bool(k, v)
}
func Any(k string, v any) zap.Field { return zap.Any(k, v) }
