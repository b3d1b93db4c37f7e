package constants

const (
	SessionHeader     = "X-Session-ID"
	SessionCookieName = "sid"
	RequestIDHeader   = "X-Request-ID"

	// 新商品預設值
	DefaultImageHint     = "paint can"
	MaxInitialPopularity = 50

	RecentOrdersLimit = 5
	// multipart 上傳上限
	MaxUploadSize int64 = 10 << 20
)

type ContextKey string

const (
	AuthorizationHeaderKey  ContextKey = "authorization"
	AuthorizationTypeBearer ContextKey = "bearer"
	AuthorizationPayloadKey ContextKey = "authorization_payload"
	SessionIDKey            ContextKey = "session_id"
)

type RequestID string

const (
	RequestIDKey RequestID = "request_id"
)

type CatalogBackend string

const (
	CatalogMongo  CatalogBackend = "mongo"
	CatalogMemory CatalogBackend = "memory"
)

type OrderStore string

const (
	OrderStoreRedis    OrderStore = "redis"
	OrderStorePostgres OrderStore = "postgres"
	OrderStoreMemory   OrderStore = "memory"
)

type EventTransport string

const (
	EventTransportKafka EventTransport = "kafka"
	EventTransportLocal EventTransport = "local"
)
