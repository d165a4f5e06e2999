package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"Marketplace-Cart/entities"
)

func runKVContract(t *testing.T, kv KVStore) {
	t.Helper()
	ctx := context.Background()
	key := "cart_items_contract_" + time.Now().Format("150405.000000")

	_, found, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found, "fresh key should be absent")

	require.NoError(t, kv.Set(ctx, key, `{"version":"1.0","items":[]}`))
	v, found, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"version":"1.0","items":[]}`, v)

	require.NoError(t, kv.Set(ctx, key, `{"version":"1.0","items":[{"id":"a"}]}`))
	v, _, err = kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"version":"1.0","items":[{"id":"a"}]}`, v, "set should overwrite")

	assert.ErrorIs(t, kv.Set(ctx, "", "x"), ErrEmptyKey)
	_, _, err = kv.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestMemoryStore(t *testing.T) {
	runKVContract(t, NewMemoryStore())
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	m := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Keys())
}

func TestSQLiteStore(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	s, err := NewSQLiteStore(db)
	require.NoError(t, err)
	runKVContract(t, s)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/cart.db"
	ctx := context.Background()

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	s, err := NewSQLiteStore(db)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "cart_items_u1", "payload"))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	s, err = NewSQLiteStore(db)
	require.NoError(t, err)

	v, found, err := s.Get(ctx, "cart_items_u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "payload", v)
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	s := NewS3StoreWithClient(fake, "carts", "/mobile/")
	runKVContract(t, s)

	require.NoError(t, s.Set(context.Background(), "cart_items_u1", "x"))
	_, ok := fake.objects["carts/mobile/cart_items_u1.json"]
	assert.True(t, ok, "objects are stored under the prefix with a .json suffix")
}

// TestRedisStore_Integration requires a running Redis.
// We skip if connection fails.
func TestRedisStore_Integration(t *testing.T) {
	s := NewRedisStore("localhost:6379", "", 0)
	defer s.Close()
	if err := s.Ping(context.Background()); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}
	runKVContract(t, s)
}

// TestGormStore_Integration runs against Postgres when CART_TEST_POSTGRES_DSN is set.
func TestGormStore_Integration(t *testing.T) {
	dsn := os.Getenv("CART_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres integration test: CART_TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.KVEntry{}))

	runKVContract(t, NewGormStore(db))
}
