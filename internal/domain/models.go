// Package domain defines the persistence models for the cache store, the
// analytics event log, and the online-visitor presence table. These types
// are mapped with GORM and form the core data layer of the site backend.
package domain

// CacheEntry is a single memoized computation in the cache-aside store.
// At most one row exists per key; writes replace any existing row.
//
// Fields:
//   - Key: opaque identifier of the cached computation (e.g. "codestats:stats").
//   - Value: serialized JSON payload produced on the last cache miss.
//   - ExpiresAt: epoch seconds after which the entry is stale. Lookups filter
//     on this column, so a stale row is indistinguishable from a missing one.
//   - TTL: the time-to-live (seconds) the entry was written with. Stored so
//     the implied creation time (ExpiresAt - TTL) can be compared against an
//     external source's modification time for proactive invalidation.
type CacheEntry struct {
	Key       string `json:"key"        gorm:"type:varchar(255);primaryKey"`
	Value     []byte `json:"value"      gorm:"type:blob;not null"`
	ExpiresAt int64  `json:"expires_at" gorm:"not null;index"`
	TTL       int64  `json:"ttl"        gorm:"not null"`
}

// TableName returns the database table name for CacheEntry.
func (CacheEntry) TableName() string { return "cache" }

// AnalyticsEvent is one row of the append-only pageview/event log. Rows are
// immutable once written; the application exposes no update or delete path.
//
// Timestamp is always server-assigned (epoch milliseconds) so that
// time-windowed reports cannot be corrupted by client clock skew.
//
// Geo fields come from edge-network-injected request headers, never from the
// request body. Optional fields default to "Unknown" (or 0 for coordinates)
// rather than NULL so that GROUP BY aggregation stays stable.
//
// IsBot is classified once at insert time from UserAgent and Referrer; report
// queries filter on the stored column instead of re-deriving it.
type AnalyticsEvent struct {
	ID        uint   `json:"id"        gorm:"primaryKey;autoIncrement"`
	Timestamp int64  `json:"timestamp" gorm:"not null;index"`
	VisitorID string `json:"visitorId" gorm:"column:visitorId;type:varchar(64);not null;index"`
	SessionID string `json:"sessionId" gorm:"column:sessionId;type:varchar(64);not null;index"`
	EventType string `json:"eventType" gorm:"column:eventType;type:varchar(32);not null"`
	EventName string `json:"eventName" gorm:"column:eventName;type:varchar(64);not null;default:''"`
	Title     string `json:"title"     gorm:"type:varchar(255);not null"`
	Slug      string `json:"slug"      gorm:"type:varchar(255);not null;index"`
	Referrer  string `json:"referrer"  gorm:"type:varchar(512);not null"`

	Flag        string  `json:"flag"        gorm:"type:varchar(16);not null"`
	CountryCode string  `json:"countryCode" gorm:"column:countryCode;type:varchar(8);not null"`
	Country     string  `json:"country"     gorm:"type:varchar(64);not null"`
	Continent   string  `json:"continent"   gorm:"type:varchar(32);not null"`
	Region      string  `json:"region"      gorm:"type:varchar(64);not null"`
	RegionCode  string  `json:"regionCode"  gorm:"column:regionCode;type:varchar(16);not null"`
	City        string  `json:"city"        gorm:"type:varchar(64);not null"`
	Latitude    float64 `json:"latitude"    gorm:"not null"`
	Longitude   float64 `json:"longitude"   gorm:"not null"`
	Timezone    string  `json:"timezone"    gorm:"type:varchar(64);not null"`

	Browser          string `json:"browser"          gorm:"type:varchar(64);not null"`
	BrowserVersion   string `json:"browserVersion"   gorm:"column:browserVersion;type:varchar(32);not null;default:''"`
	Engine           string `json:"engine"           gorm:"type:varchar(64);not null"`
	EngineVersion    string `json:"engineVersion"    gorm:"column:engineVersion;type:varchar(32);not null;default:''"`
	DeviceType       string `json:"deviceType"       gorm:"column:deviceType;type:varchar(32);not null"`
	DeviceVendor     string `json:"deviceVendor"     gorm:"column:deviceVendor;type:varchar(64);not null"`
	DeviceModel      string `json:"deviceModel"      gorm:"column:deviceModel;type:varchar(64);not null"`
	Language         string `json:"language"         gorm:"type:varchar(32);not null;default:''"`
	OS               string `json:"os"               gorm:"column:os;type:varchar(64);not null"`
	OSVersion        string `json:"osVersion"        gorm:"column:osVersion;type:varchar(32);not null;default:''"`
	ScreenResolution string `json:"screenResolution" gorm:"column:screenResolution;type:varchar(32);not null;default:''"`
	UserAgent        string `json:"userAgent"        gorm:"column:userAgent;type:varchar(512);not null"`

	StatusCode int  `json:"statusCode" gorm:"column:statusCode;not null"`
	IsBot      bool `json:"isBot"      gorm:"column:isBot;not null;index"`
}

// TableName returns the database table name for AnalyticsEvent.
func (AnalyticsEvent) TableName() string { return "analytics" }

// OnlineVisitor tracks live presence for a single visitor. One row per
// visitor; every heartbeat replaces the row with a fresh LastSeen.
// Stale rows are pruned as a side effect of reads and writes rather than by
// a background job.
type OnlineVisitor struct {
	VisitorID string `json:"visitorId" gorm:"column:visitor_id;type:varchar(64);primaryKey"`
	Slug      string `json:"slug"      gorm:"type:varchar(255);not null;default:'/'"`
	LastSeen  int64  `json:"lastSeen"  gorm:"column:last_seen;not null;index"`
}

// TableName returns the database table name for OnlineVisitor.
func (OnlineVisitor) TableName() string { return "online_visitors" }
