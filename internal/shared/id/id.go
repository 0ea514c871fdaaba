// Package id generates identifiers for launcher records.
//
// App ids are prefixed ULIDs (app_01J...), so they sort by creation time
// and are never reused. Device ids are random UUIDs prefixed with device_
// and are generated once per installation.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// AppID identifies an installed application record
type AppID string

// RequestID identifies an API request
type RequestID string

// DeviceID identifies this installation in the sync log
type DeviceID string

const (
	AppPrefix     = "app"
	RequestPrefix = "req"
	DevicePrefix  = "device"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator with monotonic crypto entropy
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy, now: time.Now}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewAppID generates a new application ID
func NewAppID() AppID {
	return AppID(Default().GenerateWithPrefix(AppPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewDeviceID generates a new device ID
func NewDeviceID() DeviceID {
	return DeviceID(DevicePrefix + "_" + uuid.NewString())
}

func (id AppID) String() string     { return string(id) }
func (id RequestID) String() string { return string(id) }
func (id DeviceID) String() string  { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// IsAppID checks for an app_ prefixed ULID
func IsAppID(s string) bool {
	rest, ok := strings.CutPrefix(s, AppPrefix+"_")
	return ok && IsValid(rest)
}

// IsDeviceID checks for a device_ prefixed UUID
func IsDeviceID(s string) bool {
	rest, ok := strings.CutPrefix(s, DevicePrefix+"_")
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

// Timestamp extracts the creation time from a ULID, prefixed or not
func Timestamp(s string) (time.Time, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	parsed, err := ulid.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
