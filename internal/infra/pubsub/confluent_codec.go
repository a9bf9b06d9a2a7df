package pubsub

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"catfeeder-server/internal/infra/cache"

	"github.com/linkedin/goavro/v2"
	"github.com/riferrei/srclient"
)

const (
	_defaultSchemaCacheTTL = 5 * time.Minute
	_confluentMagicByte    = byte(0)
	_confluentHeaderSize   = 5
)

var (
	ErrInvalidWireFormat = errors.New("invalid confluent wire format")
)

// SchemaRegistry is the subset of srclient used by the codec.
type SchemaRegistry interface {
	GetLatestSchema(subject string) (*srclient.Schema, error)
	CreateSchema(subject string, schema string, schemaType srclient.SchemaType, references ...srclient.Reference) (*srclient.Schema, error)
	GetSchema(schemaID int) (*srclient.Schema, error)
}

// NativeConverter maps between domain values and goavro native maps.
type NativeConverter interface {
	ToNative(value any) (map[string]any, error)
	FromNative(native map[string]any) (any, error)
}

type ConfluentAvroCodecOpts struct {
	Subject        string
	Schema         string
	SchemaRegistry SchemaRegistry
	Converter      NativeConverter
	SchemaCache    cache.Cache
}

// ConfluentAvroCodec uses the Confluent wire format: a zero magic byte, the
// schema id as a big endian uint32 and the Avro binary body.
type ConfluentAvroCodec struct {
	subject        string
	schema         string
	schemaRegistry SchemaRegistry
	converter      NativeConverter
	schemaCache    cache.Cache
	codecs         sync.Map
}

var _ Codec = (*ConfluentAvroCodec)(nil)

func NewConfluentAvroCodec(opts ConfluentAvroCodecOpts) (*ConfluentAvroCodec, error) {
	schemaCache := opts.SchemaCache
	if schemaCache == nil {
		var err error
		schemaCache, err = cache.New(&cache.CacheConfig{
			MaxCost:     1 << 20, // 1MB
			NumCounters: 1e4,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("creating schema cache: %w", err)
		}
	}

	return &ConfluentAvroCodec{
		subject:        opts.Subject,
		schema:         opts.Schema,
		schemaRegistry: opts.SchemaRegistry,
		converter:      opts.Converter,
		schemaCache:    schemaCache,
	}, nil
}

func (c *ConfluentAvroCodec) getOrRegisterSchemaID() (int, error) {
	ctx := context.Background()
	if cached, found := c.schemaCache.Get(ctx, c.subject); found {
		if id, err := strconv.Atoi(string(cached)); err == nil {
			return id, nil
		}
	}

	registered, err := c.schemaRegistry.GetLatestSchema(c.subject)
	if err == nil && registered != nil {
		c.schemaCache.Set(ctx, c.subject, []byte(strconv.Itoa(registered.ID())), _defaultSchemaCacheTTL)
		return registered.ID(), nil
	}

	created, err := c.schemaRegistry.CreateSchema(c.subject, c.schema, srclient.Avro)
	if err != nil {
		return 0, fmt.Errorf("registering schema: %w", err)
	}

	c.schemaCache.Set(ctx, c.subject, []byte(strconv.Itoa(created.ID())), _defaultSchemaCacheTTL)
	return created.ID(), nil
}

// getCodecByID keeps compiled codecs for the process lifetime since a schema id
// never changes meaning.
func (c *ConfluentAvroCodec) getCodecByID(schemaID int) (*goavro.Codec, error) {
	if cached, found := c.codecs.Load(schemaID); found {
		return cached.(*goavro.Codec), nil
	}

	schema, err := c.schemaRegistry.GetSchema(schemaID)
	if err != nil {
		return nil, fmt.Errorf("fetching schema from registry: %w", err)
	}

	codec, err := goavro.NewCodec(schema.Schema())
	if err != nil {
		return nil, fmt.Errorf("creating codec from schema: %w", err)
	}

	c.codecs.Store(schemaID, codec)
	return codec, nil
}

func (c *ConfluentAvroCodec) Encode(value any) ([]byte, error) {
	native, err := c.converter.ToNative(value)
	if err != nil {
		return nil, fmt.Errorf("converting to Avro native: %w", err)
	}

	schemaID, err := c.getOrRegisterSchemaID()
	if err != nil {
		return nil, fmt.Errorf("getting schema ID: %w", err)
	}

	codec, err := c.getCodecByID(schemaID)
	if err != nil {
		return nil, fmt.Errorf("getting codec by schema ID: %w", err)
	}

	result := make([]byte, _confluentHeaderSize, _confluentHeaderSize+64)
	result[0] = _confluentMagicByte
	binary.BigEndian.PutUint32(result[1:_confluentHeaderSize], uint32(schemaID))

	result, err = codec.BinaryFromNative(result, native)
	if err != nil {
		return nil, fmt.Errorf("encoding to Avro: %w", err)
	}

	return result, nil
}

func (c *ConfluentAvroCodec) Decode(data []byte) (any, error) {
	if len(data) < _confluentHeaderSize {
		return nil, fmt.Errorf("%w: too short", ErrInvalidWireFormat)
	}
	if data[0] != _confluentMagicByte {
		return nil, fmt.Errorf("%w: magic byte %d", ErrInvalidWireFormat, data[0])
	}
	schemaID := int(binary.BigEndian.Uint32(data[1:_confluentHeaderSize]))

	codec, err := c.getCodecByID(schemaID)
	if err != nil {
		return nil, fmt.Errorf("getting codec by schema ID: %w", err)
	}

	native, _, err := codec.NativeFromBinary(data[_confluentHeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("decoding Avro data: %w", err)
	}

	record, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a record, got %T", ErrInvalidWireFormat, native)
	}

	return c.converter.FromNative(record)
}
